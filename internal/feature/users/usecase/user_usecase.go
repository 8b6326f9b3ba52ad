package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"task_backend/internal/feature/users/domain/entity"
)

// dummyHash はユーザーが存在しない場合にもbcrypt比較を実行するためのハッシュです。
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// TokenIssuer は署名済みトークンを発行します。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenIssuer interface {
	// GenerateToken はユーザーのトークンを発行し、トークン文字列・トークンID・有効期限を返します。
	GenerateToken(userID string) (token, tokenID string, expiresAt time.Time, err error)
}

// Notifier はアカウントに関する通知を送信します。
// 呼び出しは送信完了を待たず、失敗は呼び出し元に返りません。
type Notifier interface {
	NotifyWelcome(ctx context.Context, email, name string)
	NotifyCancellation(ctx context.Context, email, name string)
}

// SignupInput はサインアップの入力です。
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Age      int
}

// ProfileChanges はプロフィール更新の入力です。nil のフィールドは変更しません。
type ProfileChanges struct {
	Name     *string
	Email    *string
	Password *string
	Age      *int
}

// AllowedProfileFields はプロフィール更新で変更可能なフィールドです。
var AllowedProfileFields = []string{"name", "email", "password", "age"}

// UserUsecase はアカウントとセッションのビジネスロジックを実装します。
type UserUsecase struct {
	users    UserRepository
	sessions SessionRepository
	tasks    TaskPurger
	avatars  AvatarRepository
	tokens   TokenIssuer
	notifier Notifier
	hashCost int
}

// NewUserUsecase はUserUsecaseの新しいインスタンスを生成します。
func NewUserUsecase(
	users UserRepository,
	sessions SessionRepository,
	tasks TaskPurger,
	avatars AvatarRepository,
	tokens TokenIssuer,
	notifier Notifier,
) *UserUsecase {
	return &UserUsecase{
		users:    users,
		sessions: sessions,
		tasks:    tasks,
		avatars:  avatars,
		tokens:   tokens,
		notifier: notifier,
		hashCost: bcrypt.DefaultCost,
	}
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録し、最初のトークンを発行します。
// ウェルカム通知は送信を待たずに発火します。
func (u *UserUsecase) Signup(ctx context.Context, in SignupInput) (*entity.User, string, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if err := errors.Join(
		validateName(name),
		validateEmail(email),
		validatePassword(in.Password),
		validateAge(in.Age),
	); err != nil {
		return nil, "", firstValidationError(err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.hashCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		ID:       uuid.NewString(),
		Name:     name,
		Email:    email,
		Password: string(hashed),
		Age:      in.Age,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := u.issueSession(ctx, user.ID)
	if err != nil {
		// セッションを発行できないユーザーは残さない
		if delErr := u.users.Delete(ctx, user.ID); delErr != nil {
			return nil, "", errors.Join(err, fmt.Errorf("failed to roll back user %s: %w", user.ID, delErr))
		}
		return nil, "", err
	}

	u.notifier.NotifyWelcome(ctx, user.Email, user.Name)
	return user, token, nil
}

// Login はユーザーを認証し、成功時に新しいトークンをセッション集合に追加して返します。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *UserUsecase) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	user, err := u.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, "", err
	}

	passwordHash := dummyHash
	if err == nil {
		passwordHash = user.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	// ユーザー未検出またはパスワード不一致の場合、汎用エラーを返す
	if err != nil || compareErr != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := u.issueSession(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (u *UserUsecase) issueSession(ctx context.Context, userID string) (string, error) {
	token, tokenID, expiresAt, err := u.tokens.GenerateToken(userID)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	session := &entity.Session{
		ID:        tokenID,
		UserID:    userID,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}
	return token, nil
}

// ValidateSession はユーザーが存在し、トークンIDがそのユーザーの有効なセッション集合に含まれる場合にユーザーを返します。
func (u *UserUsecase) ValidateSession(ctx context.Context, userID, tokenID string) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	ok, err := u.sessions.Exists(ctx, userID, tokenID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSessionNotFound
	}
	return user, nil
}

// Logout は提示されたトークンのセッションのみを削除します。
func (u *UserUsecase) Logout(ctx context.Context, userID, tokenID string) error {
	return u.sessions.Revoke(ctx, userID, tokenID)
}

// LogoutAll はユーザーのすべてのセッションを削除します。
func (u *UserUsecase) LogoutAll(ctx context.Context, userID string) error {
	return u.sessions.RevokeAllByUserID(ctx, userID)
}

// UpdateProfile は変更をすべて検証してから一度に適用します。
// いずれかの値が不正な場合は何も書き込みません。
func (u *UserUsecase) UpdateProfile(ctx context.Context, userID string, in ProfileChanges) (*entity.User, error) {
	var changes UserChanges
	var errs []error

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		errs = append(errs, validateName(name))
		changes.Name = &name
	}
	if in.Email != nil {
		email := normalizeEmail(*in.Email)
		errs = append(errs, validateEmail(email))
		changes.Email = &email
	}
	if in.Password != nil {
		errs = append(errs, validatePassword(*in.Password))
	}
	if in.Age != nil {
		errs = append(errs, validateAge(*in.Age))
		changes.Age = in.Age
	}
	if err := errors.Join(errs...); err != nil {
		return nil, firstValidationError(err)
	}

	if in.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), u.hashCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		h := string(hashed)
		changes.Password = &h
	}

	if changes != (UserChanges{}) {
		if err := u.users.Update(ctx, userID, changes); err != nil {
			return nil, err
		}
	}
	return u.users.FindByID(ctx, userID)
}

// DeleteAccount はタスク・セッション・アバターを削除してからユーザーを削除します。
// 途中で失敗した場合はユーザーが残るため、再実行で削除を完了できます。
// 解約通知は送信を待たずに発火します。
func (u *UserUsecase) DeleteAccount(ctx context.Context, userID string) (*entity.User, error) {
	user, err := u.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := u.tasks.DeleteByOwner(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to delete tasks of user %s: %w", userID, err)
	}
	if err := u.sessions.RevokeAllByUserID(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to revoke sessions of user %s: %w", userID, err)
	}
	if err := u.avatars.DeleteAvatar(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to delete avatar of user %s: %w", userID, err)
	}
	if err := u.users.Delete(ctx, userID); err != nil {
		return nil, err
	}

	u.notifier.NotifyCancellation(ctx, user.Email, user.Name)
	return user, nil
}

// PurgeExpiredSessions は期限切れのセッションを削除します。
func (u *UserUsecase) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return u.sessions.DeleteExpired(ctx)
}

// firstValidationError は errors.Join の結果から最初の ValidationError を取り出します。
func firstValidationError(err error) error {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return err
}

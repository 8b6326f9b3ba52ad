package adapters

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"task_backend/internal/feature/users/domain/entity"
	"task_backend/internal/feature/users/usecase"
)

// UsersCollection はユーザードキュメントのコレクション名です。
const UsersCollection = "users"

// userDocument はusersコレクションのドキュメントです。
// セッション（tokens）とアバターも同じドキュメントに埋め込みます。
type userDocument struct {
	ID        string          `bson:"_id"`
	Name      string          `bson:"name"`
	Email     string          `bson:"email"`
	Password  string          `bson:"password"`
	Age       int             `bson:"age"`
	Avatar    []byte          `bson:"avatar,omitempty"`
	Tokens    []tokenDocument `bson:"tokens"`
	CreatedAt time.Time       `bson:"createdAt"`
	UpdatedAt time.Time       `bson:"updatedAt"`
}

type tokenDocument struct {
	ID        string    `bson:"jti"`
	CreatedAt time.Time `bson:"createdAt"`
	ExpiresAt time.Time `bson:"expiresAt"`
}

func (d *userDocument) toEntity() *entity.User {
	return &entity.User{
		ID:        d.ID,
		Name:      d.Name,
		Email:     d.Email,
		Password:  d.Password,
		Age:       d.Age,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

// profileProjection は通常の取得でアバターとトークンを読み込まないための射影です。
var profileProjection = bson.M{"avatar": 0, "tokens": 0}

// userMongo はUserRepositoryとAvatarRepositoryのMongoDB実装です。
type userMongo struct {
	coll *mongo.Collection
}

var (
	_ usecase.UserRepository   = (*userMongo)(nil)
	_ usecase.AvatarRepository = (*userMongo)(nil)
)

// NewUserMongo はuserMongoの新しいインスタンスを生成します。
func NewUserMongo(db *mongo.Database) *userMongo {
	return &userMongo{coll: db.Collection(UsersCollection)}
}

// EnsureIndexes はメールアドレスの一意インデックスを作成します。
func (r *userMongo) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	return err
}

// Create はユーザードキュメントを追加します。
func (r *userMongo) Create(ctx context.Context, u *entity.User) error {
	now := time.Now().UTC()
	doc := userDocument{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.Password,
		Age:       u.Age,
		Tokens:    []tokenDocument{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	return nil
}

// FindByEmail はメールアドレスでユーザーを取得します。
func (r *userMongo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByID はIDでユーザーを取得します。
func (r *userMongo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userMongo) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var doc userDocument
	err := r.coll.FindOne(ctx, filter, options.FindOne().SetProjection(profileProjection)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toEntity(), nil
}

// userSetDocument はUserChangesを$set用のドキュメントに変換します。
func userSetDocument(changes usecase.UserChanges, now time.Time) bson.M {
	set := bson.M{}
	if changes.Name != nil {
		set["name"] = *changes.Name
	}
	if changes.Email != nil {
		set["email"] = *changes.Email
	}
	if changes.Password != nil {
		set["password"] = *changes.Password
	}
	if changes.Age != nil {
		set["age"] = *changes.Age
	}
	if len(set) == 0 {
		return set
	}
	set["updatedAt"] = now
	return set
}

// Update は変更を1回の$setで適用します。単一ドキュメントの更新はアトミックです。
func (r *userMongo) Update(ctx context.Context, id string, changes usecase.UserChanges) error {
	set := userSetDocument(changes, time.Now().UTC())
	if len(set) == 0 {
		return nil
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return usecase.ErrEmailAlreadyExists
		}
		return err
	}
	if result.MatchedCount == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// Delete はユーザードキュメントを削除します。埋め込みのトークンとアバターも同時に消えます。
func (r *userMongo) Delete(ctx context.Context, id string) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// SaveAvatar はアバター画像を保存します。
func (r *userMongo) SaveAvatar(ctx context.Context, userID string, data []byte) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"avatar": data}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// DeleteAvatar はアバター画像を削除します。
func (r *userMongo) DeleteAvatar(ctx context.Context, userID string) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$unset": bson.M{"avatar": ""}})
	return err
}

// FindAvatar はアバター画像を取得します。
func (r *userMongo) FindAvatar(ctx context.Context, userID string) ([]byte, error) {
	var doc struct {
		Avatar []byte `bson:"avatar"`
	}
	err := r.coll.FindOne(ctx, bson.M{"_id": userID},
		options.FindOne().SetProjection(bson.M{"avatar": 1})).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, usecase.ErrAvatarNotFound
		}
		return nil, err
	}
	if len(doc.Avatar) == 0 {
		return nil, usecase.ErrAvatarNotFound
	}
	return doc.Avatar, nil
}

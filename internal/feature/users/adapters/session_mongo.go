package adapters

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"task_backend/internal/feature/users/domain/entity"
	"task_backend/internal/feature/users/usecase"
)

// sessionMongo はユーザードキュメントに埋め込まれたtokens配列をセッション集合として扱います。
type sessionMongo struct {
	coll *mongo.Collection
}

var _ usecase.SessionRepository = (*sessionMongo)(nil)

// NewSessionMongo はsessionMongoの新しいインスタンスを生成します。
func NewSessionMongo(db *mongo.Database) *sessionMongo {
	return &sessionMongo{coll: db.Collection(UsersCollection)}
}

// activeSessionFilter は有効なセッションを持つユーザーに一致するフィルタを返します。
func activeSessionFilter(userID, id string, now time.Time) bson.M {
	return bson.M{
		"_id": userID,
		"tokens": bson.M{"$elemMatch": bson.M{
			"jti":       id,
			"expiresAt": bson.M{"$gt": now},
		}},
	}
}

// Create はトークンをユーザーのtokens配列に追加します。
func (r *sessionMongo) Create(ctx context.Context, s *entity.Session) error {
	push := bson.M{"$push": bson.M{"tokens": tokenDocument{
		ID:        s.ID,
		CreatedAt: s.CreatedAt.UTC(),
		ExpiresAt: s.ExpiresAt.UTC(),
	}}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": s.UserID}, push)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}

// Exists はセッションが有効かどうかを返します。
func (r *sessionMongo) Exists(ctx context.Context, userID, id string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, activeSessionFilter(userID, id, time.Now().UTC()))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Revoke は提示されたトークンだけを配列から取り除きます。
func (r *sessionMongo) Revoke(ctx context.Context, userID, id string) error {
	result, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID, "tokens.jti": id},
		bson.M{"$pull": bson.M{"tokens": bson.M{"jti": id}}},
	)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return usecase.ErrSessionNotFound
	}
	return nil
}

// RevokeAllByUserID はtokens配列を空にします。
func (r *sessionMongo) RevokeAllByUserID(ctx context.Context, userID string) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": userID}, bson.M{"$set": bson.M{"tokens": []tokenDocument{}}})
	return err
}

// DeleteExpired は期限切れのトークンを全ユーザーから取り除きます。
// 戻り値は更新されたユーザードキュメントの数です。
func (r *sessionMongo) DeleteExpired(ctx context.Context) (int64, error) {
	now := time.Now().UTC()
	result, err := r.coll.UpdateMany(ctx,
		bson.M{"tokens.expiresAt": bson.M{"$lte": now}},
		bson.M{"$pull": bson.M{"tokens": bson.M{"expiresAt": bson.M{"$lte": now}}}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}

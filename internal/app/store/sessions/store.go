// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultTTL is how long a session lives when no TTL is configured.
const DefaultTTL = 24 * time.Hour

// Session is one server-side login session. The client holds only Token
// (inside a signed cookie); which user the session maps to lives here.
type Session struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	Token  string             `bson:"token"`
	UserID primitive.ObjectID `bson:"user_id"`

	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// Store manages login sessions in MongoDB.
type Store struct {
	c   *mongo.Collection
	ttl time.Duration
}

// New creates a sessions Store. A non-positive ttl falls back to DefaultTTL.
func New(db *mongo.Database, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{c: db.Collection("sessions"), ttl: ttl}
}

// EnsureIndexes creates the token lookup index and the TTL index that reaps
// expired sessions server-side.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_sessions_token"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_sessions_ttl"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_sessions_user"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// Create starts a new session for a user and returns it with a fresh,
// unpredictable token.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID) (Session, error) {
	token, err := generateToken()
	if err != nil {
		return Session{}, err
	}

	now := time.Now().UTC()
	sess := Session{
		ID:        primitive.NewObjectID(),
		Token:     token,
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Resolve maps a token to the user id it was issued for. The second return is
// false for unknown, destroyed, or expired tokens; the TTL index lags actual
// expiry, so the query re-checks expires_at itself.
func (s *Store) Resolve(ctx context.Context, token string) (primitive.ObjectID, bool, error) {
	var sess Session
	err := s.c.FindOne(ctx, bson.M{
		"token":      token,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&sess)

	if err == mongo.ErrNoDocuments {
		return primitive.NilObjectID, false, nil
	}
	if err != nil {
		return primitive.NilObjectID, false, err
	}
	return sess.UserID, true, nil
}

// Destroy invalidates a token immediately. Destroying a token that does not
// exist is not an error.
func (s *Store) Destroy(ctx context.Context, token string) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"token": token})
	return err
}

// DestroyAllForUser removes every session belonging to a user.
func (s *Store) DestroyAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// CleanupExpired removes expired sessions. This is a backup for when TTL
// index cleanup is delayed.
func (s *Store) CleanupExpired(ctx context.Context) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lt": time.Now().UTC()},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// generateToken returns 256 bits from crypto/rand, base64url-encoded.
func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

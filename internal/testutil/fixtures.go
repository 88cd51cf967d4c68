// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/siddhanthpranavrao/authentication/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateLocalUser creates a username/password user. The password is hashed
// with a low bcrypt cost to keep tests fast.
func (f *Fixtures) CreateLocalUser(ctx context.Context, username, password string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash test password: %v", err)
	}

	now := time.Now().UTC()
	hashStr := string(hash)
	u := models.User{
		ID:           primitive.NewObjectID(),
		Username:     &username,
		PasswordHash: &hashStr,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateGoogleUser creates a user linked to a Google account.
func (f *Fixtures) CreateGoogleUser(ctx context.Context, googleID string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		GoogleID:  &googleID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateFacebookUser creates a user linked to a Facebook account.
func (f *Fixtures) CreateFacebookUser(ctx context.Context, facebookID string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FacebookID: &facebookID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateUserWithSecret creates a local user that already holds a secret.
func (f *Fixtures) CreateUserWithSecret(ctx context.Context, username, secret string) models.User {
	f.t.Helper()

	u := f.CreateLocalUser(ctx, username, "test-password")
	_, err := f.db.Collection("users").UpdateByID(ctx, u.ID, bson.M{
		"$set": bson.M{"secret": secret},
	})
	if err != nil {
		f.t.Fatalf("failed to set test secret: %v", err)
	}
	u.Secret = &secret
	return u
}

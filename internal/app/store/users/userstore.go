// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/siddhanthpranavrao/authentication/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// bcryptCost is used for all password hashes.
const bcryptCost = 12

var (
	// ErrDuplicateUsername is returned when registering a username that already exists.
	ErrDuplicateUsername = errors.New("a user with this username already exists")

	// ErrInvalidCredentials is returned for both unknown-username and
	// wrong-password so callers cannot tell the two apart.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// dummyHash is compared against on the unknown-username path so that a login
// probe costs one bcrypt verification whether or not the username exists.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), bcryptCost)
	if err != nil {
		panic(err)
	}
	return h
}()

// Store manages user identity records.
type Store struct {
	c *mongo.Collection
}

// New creates a users Store backed by the "users" collection.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// EnsureIndexes creates the uniqueness constraints the auth flows rely on.
// The indexes are sparse: a user created via Google has no username, and two
// such users must not collide on the absent field.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "username", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_users_username"),
		},
		{
			Keys:    bson.D{{Key: "google_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_users_google_id"),
		},
		{
			Keys:    bson.D{{Key: "facebook_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_users_facebook_id"),
		},
	}
	_, err := s.c.Indexes().CreateMany(ctx, indexes)
	return err
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByUsername looks up a user by username. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"username": normalizeUsername(username)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Register creates a local-auth user with a bcrypt password hash.
// Uniqueness is enforced by the index, not a read-then-write check, so two
// racing registrations of the same username cannot both succeed.
func (s *Store) Register(ctx context.Context, username, password string) (models.User, error) {
	username = normalizeUsername(username)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return models.User{}, err
	}
	hashStr := string(hash)

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Username:     &username,
		PasswordHash: &hashStr,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateUsername
		}
		return models.User{}, err
	}
	return u, nil
}

// Verify checks a username/password pair and returns the matching user.
// Unknown username and wrong password both return ErrInvalidCredentials, and
// both paths pay for one bcrypt comparison.
func (s *Store) Verify(ctx context.Context, username, password string) (models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"username": normalizeUsername(username)}).Decode(&u)
	switch {
	case err == mongo.ErrNoDocuments:
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return models.User{}, ErrInvalidCredentials
	case err != nil:
		return models.User{}, err
	}

	// OAuth-only users have no local password and cannot log in locally.
	if u.PasswordHash == nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return models.User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*u.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return u, nil
}

// FindOrCreateByGoogleID resolves a Google profile id to a user, creating the
// record on first login.
func (s *Store) FindOrCreateByGoogleID(ctx context.Context, googleID string) (models.User, error) {
	return s.findOrCreate(ctx, "google_id", googleID)
}

// FindOrCreateByFacebookID resolves a Facebook profile id to a user, creating
// the record on first login.
func (s *Store) FindOrCreateByFacebookID(ctx context.Context, facebookID string) (models.User, error) {
	return s.findOrCreate(ctx, "facebook_id", facebookID)
}

// findOrCreate is an atomic upsert keyed on one provider field. $setOnInsert
// leaves an existing record untouched; the sparse unique index guarantees two
// racing upserts cannot both insert, and the loser's duplicate-key error is
// absorbed by a single retry that then finds the winner's record.
func (s *Store) findOrCreate(ctx context.Context, field, providerID string) (models.User, error) {
	now := time.Now().UTC()
	filter := bson.M{field: providerID}
	update := bson.M{
		"$setOnInsert": bson.M{
			"_id":        primitive.NewObjectID(),
			field:        providerID,
			"created_at": now,
			"updated_at": now,
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var u models.User
	err := s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u)
	if wafflemongo.IsDup(err) {
		err = s.c.FindOneAndUpdate(ctx, filter, update, opts).Decode(&u)
	}
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// SetSecret overwrites the user's secret. The write is acknowledged by the
// server before SetSecret returns; callers redirect only after that.
func (s *Store) SetSecret(ctx context.Context, id primitive.ObjectID, secret string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{
		"$set": bson.M{
			"secret":     secret,
			"updated_at": time.Now().UTC(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// ListWithSecrets returns every user with a non-empty secret, for the public
// secrets board. Users without a secret are filtered out at the query.
func (s *Store) ListWithSecrets(ctx context.Context) ([]models.User, error) {
	cur, err := s.c.Find(ctx,
		bson.M{"secret": bson.M{"$exists": true, "$nin": bson.A{nil, ""}}},
		options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

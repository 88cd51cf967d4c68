package sessions_test

import (
	"testing"
	"time"

	"github.com/siddhanthpranavrao/authentication/internal/app/store/sessions"
	"github.com/siddhanthpranavrao/authentication/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateAndResolve(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := sessions.New(db, sessions.DefaultTTL)
	userID := primitive.NewObjectID()

	sess, err := store.Create(ctx, userID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if sess.Token == "" {
		t.Fatal("Create returned empty token")
	}

	gotID, found, err := store.Resolve(ctx, sess.Token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !found {
		t.Fatal("Resolve did not find fresh session")
	}
	if gotID != userID {
		t.Errorf("Resolve: got %s, want %s", gotID.Hex(), userID.Hex())
	}
}

func TestResolve_UnknownToken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := sessions.New(db, sessions.DefaultTTL)

	_, found, err := store.Resolve(ctx, "no-such-token")
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if found {
		t.Error("Resolve found a session for an unknown token")
	}
}

func TestResolve_ExpiredSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// TTL in the past by the time we resolve.
	store := sessions.New(db, time.Nanosecond)
	sess, err := store.Create(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	_, found, err := store.Resolve(ctx, sess.Token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if found {
		t.Error("Resolve returned an expired session")
	}
}

func TestDestroy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := sessions.New(db, sessions.DefaultTTL)
	sess, err := store.Create(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Destroy(ctx, sess.Token); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}

	_, found, err := store.Resolve(ctx, sess.Token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if found {
		t.Error("session still resolvable after Destroy")
	}

	// Destroying again is not an error.
	if err := store.Destroy(ctx, sess.Token); err != nil {
		t.Errorf("second Destroy failed: %v", err)
	}
}

func TestDestroyAllForUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := sessions.New(db, sessions.DefaultTTL)
	userID := primitive.NewObjectID()
	otherID := primitive.NewObjectID()

	for i := 0; i < 3; i++ {
		if _, err := store.Create(ctx, userID); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	other, err := store.Create(ctx, otherID)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	n, err := store.DestroyAllForUser(ctx, userID)
	if err != nil {
		t.Fatalf("DestroyAllForUser failed: %v", err)
	}
	if n != 3 {
		t.Errorf("destroyed %d sessions, want 3", n)
	}

	// The other user's session survives.
	_, found, err := store.Resolve(ctx, other.Token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !found {
		t.Error("unrelated session was destroyed")
	}
}

func TestCleanupExpired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	expired := sessions.New(db, time.Nanosecond)
	if _, err := expired.Create(ctx, primitive.NewObjectID()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	live := sessions.New(db, sessions.DefaultTTL)
	keep, err := live.Create(ctx, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	n, err := live.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("CleanupExpired failed: %v", err)
	}
	if n != 1 {
		t.Errorf("cleaned up %d sessions, want 1", n)
	}

	_, found, err := live.Resolve(ctx, keep.Token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if !found {
		t.Error("live session was cleaned up")
	}
}

package users_test

import (
	"context"
	"path/filepath"
	"testing"

	"cinelog/internal/database"
	"cinelog/services/users"
)

func testService(t *testing.T) (*users.Service, *database.DB) {
	t.Helper()
	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "users.db")})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return users.NewService(db), db
}

func TestSeedAndCheck(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	err := svc.Seed(ctx, []string{"Alex", "Carrie"}, map[string]string{
		"Alex":   "movie-night-42",
		"Carrie": "popcorn-time",
	})
	if err != nil {
		t.Fatalf("seed returned error: %v", err)
	}

	ok, err := svc.Check("Alex", "movie-night-42")
	if err != nil {
		t.Fatalf("check returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected valid credentials to pass")
	}

	ok, err = svc.Check("Alex", "wrong-password")
	if err != nil {
		t.Fatalf("check returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected wrong password to fail")
	}

	ok, err = svc.Check("Mallory", "movie-night-42")
	if err != nil {
		t.Fatalf("check returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected unknown user to fail")
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	if err := svc.Seed(ctx, []string{"Alex"}, map[string]string{"Alex": "first"}); err != nil {
		t.Fatalf("seed returned error: %v", err)
	}
	if err := svc.Seed(ctx, []string{"Alex"}, map[string]string{"Alex": "second"}); err != nil {
		t.Fatalf("second seed returned error: %v", err)
	}

	// The original password still works; reseeding must not rotate it.
	ok, err := svc.Check("Alex", "first")
	if err != nil {
		t.Fatalf("check returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected original password to survive reseed")
	}
}

func TestSeedGeneratesPasswordWhenMissing(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()

	if err := svc.Seed(ctx, []string{"Carrie"}, nil); err != nil {
		t.Fatalf("seed returned error: %v", err)
	}

	user, err := db.Users.GetByUsername(ctx, "Carrie")
	if err != nil {
		t.Fatalf("lookup returned error: %v", err)
	}
	if user == nil {
		t.Fatalf("expected seeded account to exist")
	}
	if user.PasswordHash == "" {
		t.Fatalf("expected a password hash for the generated password")
	}
}

func TestCheckUpdatesLastLogin(t *testing.T) {
	svc, db := testService(t)
	ctx := context.Background()

	if err := svc.Seed(ctx, []string{"Alex"}, map[string]string{"Alex": "pw"}); err != nil {
		t.Fatalf("seed returned error: %v", err)
	}

	before, err := db.Users.GetByUsername(ctx, "Alex")
	if err != nil {
		t.Fatalf("lookup returned error: %v", err)
	}
	if before.LastLogin != nil {
		t.Fatalf("expected fresh account to have no login timestamp")
	}

	if ok, err := svc.Check("Alex", "pw"); err != nil || !ok {
		t.Fatalf("check failed: ok=%v err=%v", ok, err)
	}

	after, err := db.Users.GetByUsername(ctx, "Alex")
	if err != nil {
		t.Fatalf("lookup returned error: %v", err)
	}
	if after.LastLogin == nil {
		t.Fatalf("expected successful check to record a login timestamp")
	}
}

func TestGetUnknownUser(t *testing.T) {
	svc, _ := testService(t)

	if _, err := svc.Get(context.Background(), "Nobody"); err != users.ErrUnknownUser {
		t.Fatalf("expected ErrUnknownUser, got %v", err)
	}
}

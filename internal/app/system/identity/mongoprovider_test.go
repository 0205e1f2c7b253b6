package identity_test

import (
	"errors"
	"testing"

	"github.com/campusfound/campusfound/internal/app/system/identity"
	"github.com/campusfound/campusfound/internal/app/system/indexes"
	"github.com/campusfound/campusfound/internal/testutil"
)

func TestMongoProvider_CreateAndAuthenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := identity.NewMongoProvider(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID, err := provider.CreateUser(ctx, "alice@tip.edu.ph", "password1")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if userID == "" {
		t.Fatal("expected a user id")
	}

	got, err := provider.Authenticate(ctx, "alice@tip.edu.ph", "password1")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got != userID {
		t.Errorf("expected %q, got %q", userID, got)
	}
}

func TestMongoProvider_Authenticate_WrongPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := identity.NewMongoProvider(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := provider.CreateUser(ctx, "alice@tip.edu.ph", "password1"); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	_, err := provider.Authenticate(ctx, "alice@tip.edu.ph", "wrong")
	if !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestMongoProvider_Authenticate_UnknownEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := identity.NewMongoProvider(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := provider.Authenticate(ctx, "nobody@tip.edu.ph", "password1")
	if !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestMongoProvider_CreateUser_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := identity.NewMongoProvider(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := provider.CreateUser(ctx, "alice@tip.edu.ph", "password1"); err != nil {
		t.Fatalf("first CreateUser failed: %v", err)
	}

	_, err := provider.CreateUser(ctx, "alice@tip.edu.ph", "password2")
	if !errors.Is(err, identity.ErrEmailTaken) {
		t.Errorf("expected ErrEmailTaken, got %v", err)
	}
}

func TestMongoProvider_Reauthenticate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := identity.NewMongoProvider(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID, err := provider.CreateUser(ctx, "alice@tip.edu.ph", "password1")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := provider.Reauthenticate(ctx, userID, "password1"); err != nil {
		t.Errorf("Reauthenticate failed: %v", err)
	}
	if err := provider.Reauthenticate(ctx, userID, "wrong"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestMongoProvider_UpdateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := identity.NewMongoProvider(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	userID, err := provider.CreateUser(ctx, "alice@tip.edu.ph", "password1")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if err := provider.UpdateEmail(ctx, userID, "alice2@tip.edu.ph"); err != nil {
		t.Fatalf("UpdateEmail failed: %v", err)
	}

	// Old email no longer authenticates, new one does
	if _, err := provider.Authenticate(ctx, "alice@tip.edu.ph", "password1"); !errors.Is(err, identity.ErrInvalidCredentials) {
		t.Errorf("expected old email rejected, got %v", err)
	}
	if _, err := provider.Authenticate(ctx, "alice2@tip.edu.ph", "password1"); err != nil {
		t.Errorf("expected new email accepted, got %v", err)
	}
}

func TestMongoProvider_UpdateEmail_UnknownUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	provider := identity.NewMongoProvider(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := provider.UpdateEmail(ctx, "no-such-user", "x@tip.edu.ph")
	if !errors.Is(err, identity.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

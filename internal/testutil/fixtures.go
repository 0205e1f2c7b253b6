package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/campusfound/campusfound/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
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

// CreateItem inserts an item directly into the items collection,
// bypassing the store, and returns it.
func (f *Fixtures) CreateItem(ctx context.Context, userEmail, category string) models.Item {
	f.t.Helper()

	item := models.Item{
		PostID:    uuid.NewString(),
		Text:      "fixture item",
		Location:  "Library",
		Color:     "black",
		Category:  category,
		Timestamp: time.Now().UnixMilli(),
		UserEmail: userEmail,
	}

	if _, err := f.db.Collection("items").InsertOne(ctx, item); err != nil {
		f.t.Fatalf("failed to create test item: %v", err)
	}
	return item
}

// CreateProfile inserts a profile record keyed by userID directly into
// the profiles collection.
func (f *Fixtures) CreateProfile(ctx context.Context, userID, email, studentNumber string) models.UserProfile {
	f.t.Helper()

	p := models.UserProfile{
		Email:         email,
		StudentNumber: studentNumber,
	}
	doc := struct {
		ID string `bson:"_id"`
		models.UserProfile `bson:",inline"`
	}{ID: userID, UserProfile: p}

	if _, err := f.db.Collection("profiles").InsertOne(ctx, doc); err != nil {
		f.t.Fatalf("failed to create test profile: %v", err)
	}
	return p
}

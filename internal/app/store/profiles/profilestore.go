// Package profilestore persists per-user profile records keyed by the
// identity provider's stable user id.
package profilestore

import (
	"context"
	"errors"

	"github.com/campusfound/campusfound/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no profile exists for the given user id.
var ErrNotFound = errors.New("profile not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("profiles")}
}

type profileDoc struct {
	ID                 string `bson:"_id"`
	models.UserProfile `bson:",inline"`
}

// Load returns the profile record for the given user id.
func (s *Store) Load(ctx context.Context, userID string) (*models.UserProfile, error) {
	var doc profileDoc
	if err := s.c.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &doc.UserProfile, nil
}

// Save writes the full profile record under the user's id, replacing
// whatever was there before. Fields absent from the given profile are
// removed from the stored record, not merged.
func (s *Store) Save(ctx context.Context, userID string, p models.UserProfile) error {
	doc := profileDoc{ID: userID, UserProfile: p}
	_, err := s.c.ReplaceOne(ctx,
		bson.M{"_id": userID},
		doc,
		options.Replace().SetUpsert(true),
	)
	return err
}

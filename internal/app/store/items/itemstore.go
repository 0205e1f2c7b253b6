// Package itemstore persists lost-and-found items and their comments
// in the items collection.
//
// Items are written once and never updated through this client, except
// for the append-only comments sub-document. Collection order is the
// store's insertion order; consumers that want newest-first reverse it
// themselves (the feed does).
package itemstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/campusfound/campusfound/internal/app/system/htmlsanitize"
	"github.com/campusfound/campusfound/internal/app/system/inputval"
	"github.com/campusfound/campusfound/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when no item exists for the given postId.
var ErrNotFound = errors.New("item not found")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("items")}
}

// Draft holds the user-entered fields of a new item. Image is the
// already-resolved download URL, or empty when no photo was attached;
// the caller uploads the photo before calling Create so the write
// never carries a pending upload.
type Draft struct {
	Text     string
	Location string
	Color    string
	Category string
	Image    string
}

// Create validates the draft, assigns a fresh postId and creation
// timestamp, and writes the full item record in a single keyed write.
// All four text fields must be non-empty after trimming; a validation
// failure returns before any network effect.
func (s *Store) Create(ctx context.Context, draft Draft, authorEmail string) (models.Item, error) {
	if err := inputval.NonEmpty(draft.Text, draft.Location, draft.Color, draft.Category); err != nil {
		return models.Item{}, err
	}

	item := models.Item{
		PostID:    uuid.NewString(),
		Text:      htmlsanitize.StripTags(draft.Text),
		Image:     draft.Image,
		Location:  strings.TrimSpace(draft.Location),
		Color:     strings.TrimSpace(draft.Color),
		Category:  strings.TrimSpace(draft.Category),
		Timestamp: time.Now().UnixMilli(),
		UserEmail: authorEmail,
	}

	if _, err := s.c.InsertOne(ctx, item); err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// Get loads a single item by postId.
func (s *Store) Get(ctx context.Context, postID string) (*models.Item, error) {
	var item models.Item
	if err := s.c.FindOne(ctx, bson.M{"postId": postID}).Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// List returns the full collection in insertion order (oldest first).
func (s *Store) List(ctx context.Context) ([]models.Item, error) {
	return s.find(ctx, bson.M{})
}

// ListByAuthor returns the author's items in insertion order, using
// the userEmail index. Ownership is an email equality join, not a
// stable-id join; see models.Item.
func (s *Store) ListByAuthor(ctx context.Context, email string) ([]models.Item, error) {
	return s.find(ctx, bson.M{"userEmail": email})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Item, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []models.Item
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AppendComment appends a comment under the item's comments
// sub-document with a fresh time-ordered child key and returns the
// key. A trimmed-empty text or blank postId is a no-op: no write is
// issued and the returned key is empty.
//
// The item's own record is not read back and no local cache is
// updated; callers that want immediate UI feedback mirror the comment
// themselves and accept that the mirror may lag the next snapshot.
func (s *Store) AppendComment(ctx context.Context, postID, userEmail, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" || postID == "" {
		return "", nil
	}

	key, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	comment := models.Comment{
		UserEmail: userEmail,
		Text:      htmlsanitize.StripTags(text),
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"postId": postID},
		bson.M{"$set": bson.M{"comments." + key.String(): comment}},
	)
	if err != nil {
		return "", err
	}
	if res.MatchedCount == 0 {
		return "", ErrNotFound
	}
	return key.String(), nil
}

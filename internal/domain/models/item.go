// internal/domain/models/item.go
package models

import "sort"

// Item is a lost-or-found report posted to the shared feed.
//
// Field names follow the wire format of the records in the items
// collection. An item is immutable after creation except for Comments,
// which is append-only; there is no update or delete path through this
// client.
//
// NOTE:
//   - Ownership is recorded as the author's email at creation time, not
//     the identity provider's stable user id. "My items" views join on
//     this email, so an email change orphans earlier posts.
type Item struct {
	PostID    string             `bson:"postId" json:"postId"`
	Text      string             `bson:"text" json:"text"`
	Image     string             `bson:"image" json:"image"` // download URL, or "" when no photo was attached
	Location  string             `bson:"location" json:"location"`
	Color     string             `bson:"color" json:"color"`
	Category  string             `bson:"category" json:"category"`
	Timestamp int64              `bson:"timestamp" json:"timestamp"` // creation time, epoch millis
	UserEmail string             `bson:"userEmail" json:"userEmail"`
	Comments  map[string]Comment `bson:"comments,omitempty" json:"comments,omitempty"`
}

// Comment is an append-only child of exactly one Item, keyed by a
// store-generated unique key. Comments carry no timestamp; their order
// is the insertion order of their keys.
type Comment struct {
	UserEmail string `bson:"userEmail" json:"userEmail"`
	Text      string `bson:"text" json:"text"`
}

// SortedComments returns the item's comments in append order. Child
// keys are time-ordered (UUIDv7), so lexical key order is insertion
// order.
func (i Item) SortedComments() []Comment {
	if len(i.Comments) == 0 {
		return nil
	}
	keys := make([]string, 0, len(i.Comments))
	for k := range i.Comments {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Comment, 0, len(keys))
	for _, k := range keys {
		out = append(out, i.Comments[k])
	}
	return out
}

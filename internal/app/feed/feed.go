// Package feed is the live view model over the items collection: a
// reversed newest-first listing with category search, viewer-scoped
// slices, and the comment thread modal.
package feed

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/campusfound/campusfound/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.uber.org/zap"
)

// ErrNoThread is returned by comment operations when no thread is open.
var ErrNoThread = errors.New("no open comment thread")

// Subscription is the live snapshot source the feed consumes.
// Satisfied by itemstore.Subscription.
type Subscription interface {
	Snapshots() <-chan []models.Item
	Close()
}

// Commenter appends comments to items. Satisfied by itemstore.Store.
type Commenter interface {
	AppendComment(ctx context.Context, postID, userEmail, text string) (string, error)
}

// thread is the open comment modal: which post, the compose field, and
// a local mirror of comments submitted from here that the next
// snapshot may not have caught up with yet.
type thread struct {
	postID  string
	compose string
	mirror  map[string]models.Comment
}

// Feed holds the latest items snapshot reversed newest-first and the
// comment thread state. It is scoped to one signed-in viewer; sign-in
// and sign-out build a fresh feed.
type Feed struct {
	sub         Subscription
	commenter   Commenter
	viewerEmail string
	log         *zap.Logger

	mu     sync.RWMutex
	items  []models.Item // newest first
	query  string
	thread *thread

	closeOnce sync.Once
	done      chan struct{}
}

// New starts consuming the subscription. The feed reflects each
// snapshot as it arrives; the initial snapshot is typically available
// before the first Items call.
func New(sub Subscription, commenter Commenter, viewerEmail string, log *zap.Logger) *Feed {
	f := &Feed{
		sub:         sub,
		commenter:   commenter,
		viewerEmail: viewerEmail,
		log:         log,
		done:        make(chan struct{}),
	}
	go f.run()
	return f
}

func (f *Feed) run() {
	defer close(f.done)
	for snap := range f.sub.Snapshots() {
		reversed := make([]models.Item, len(snap))
		for i, it := range snap {
			reversed[len(snap)-1-i] = it
		}
		f.mu.Lock()
		f.items = reversed
		f.mu.Unlock()
	}
}

// Close disposes the underlying subscription and waits for the last
// snapshot to be applied. Safe to call more than once.
func (f *Feed) Close() {
	f.closeOnce.Do(func() {
		f.sub.Close()
		<-f.done
	})
}

// SetQuery sets the category search text. Empty restores the full
// listing.
func (f *Feed) SetQuery(q string) {
	f.mu.Lock()
	f.query = strings.TrimSpace(q)
	f.mu.Unlock()
}

// Items returns the current listing newest-first, filtered by the
// query as a case-insensitive substring match on the category field
// only. Text, location, and color are not searched.
func (f *Feed) Items() []models.Item {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.query == "" {
		return append([]models.Item(nil), f.items...)
	}
	q := text.Fold(f.query)
	var out []models.Item
	for _, it := range f.items {
		if strings.Contains(text.Fold(it.Category), q) {
			out = append(out, it)
		}
	}
	return out
}

// Mine returns the viewer's own posts, newest first. Ownership is an
// email equality join; see models.Item.
func (f *Feed) Mine() []models.Item {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []models.Item
	for _, it := range f.items {
		if it.UserEmail == f.viewerEmail {
			out = append(out, it)
		}
	}
	return out
}

// Others returns everyone else's posts, newest first.
func (f *Feed) Others() []models.Item {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []models.Item
	for _, it := range f.items {
		if it.UserEmail != f.viewerEmail {
			out = append(out, it)
		}
	}
	return out
}

// OpenThread opens the comment modal for the given post. Opening a
// thread while another is open replaces it and discards its compose
// text.
func (f *Feed) OpenThread(postID string) {
	f.mu.Lock()
	f.thread = &thread{postID: postID, mirror: make(map[string]models.Comment)}
	f.mu.Unlock()
}

// CloseThread closes the comment modal. Closing while nothing is open
// is a no-op.
func (f *Feed) CloseThread() {
	f.mu.Lock()
	f.thread = nil
	f.mu.Unlock()
}

// Thread returns the open thread's post with locally mirrored comments
// merged in, or false when no thread is open or the post has vanished
// from the snapshot.
func (f *Feed) Thread() (models.Item, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.thread == nil {
		return models.Item{}, false
	}
	for _, it := range f.items {
		if it.PostID != f.thread.postID {
			continue
		}
		if len(f.thread.mirror) == 0 {
			return it, true
		}
		merged := make(map[string]models.Comment, len(it.Comments)+len(f.thread.mirror))
		for k, c := range it.Comments {
			merged[k] = c
		}
		for k, c := range f.thread.mirror {
			merged[k] = c
		}
		it.Comments = merged
		return it, true
	}
	return models.Item{}, false
}

// Compose returns the thread's compose field.
func (f *Feed) Compose() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.thread == nil {
		return ""
	}
	return f.thread.compose
}

// SetCompose sets the thread's compose field. No-op when no thread is
// open.
func (f *Feed) SetCompose(text string) {
	f.mu.Lock()
	if f.thread != nil {
		f.thread.compose = text
	}
	f.mu.Unlock()
}

// Reply prefills the compose field with a mention of the given author.
func (f *Feed) Reply(authorEmail string) {
	f.SetCompose("@" + authorEmail + " ")
}

// SubmitComment appends the compose text as a comment on the open
// thread. A trimmed-empty compose is a no-op. On success the comment
// is mirrored into the thread, the compose field is cleared, and the
// modal stays open.
func (f *Feed) SubmitComment(ctx context.Context) error {
	f.mu.RLock()
	if f.thread == nil {
		f.mu.RUnlock()
		return ErrNoThread
	}
	postID := f.thread.postID
	compose := f.thread.compose
	f.mu.RUnlock()

	body := strings.TrimSpace(compose)
	if body == "" {
		return nil
	}

	key, err := f.commenter.AppendComment(ctx, postID, f.viewerEmail, body)
	if err != nil {
		return err
	}

	f.mu.Lock()
	if f.thread != nil && f.thread.postID == postID {
		if key != "" {
			f.thread.mirror[key] = models.Comment{UserEmail: f.viewerEmail, Text: body}
		}
		f.thread.compose = ""
	}
	f.mu.Unlock()

	f.log.Debug("comment submitted", zap.String("post_id", postID))
	return nil
}

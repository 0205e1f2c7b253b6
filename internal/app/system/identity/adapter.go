package identity

import (
	"context"
	"strings"
	"sync"

	profilestore "github.com/campusfound/campusfound/internal/app/store/profiles"
	"github.com/campusfound/campusfound/internal/app/system/inputval"
	"github.com/campusfound/campusfound/internal/domain/models"
	"go.uber.org/zap"
)

// Uploader resolves a local file into a hosted URL. Satisfied by
// media.Uploader; the adapter only needs this one call for avatar
// changes.
type Uploader interface {
	Upload(ctx context.Context, localPath string) (string, error)
}

// ProfileStore is the slice of the profile store the adapter uses.
// Satisfied by profilestore.Store.
type ProfileStore interface {
	Load(ctx context.Context, userID string) (*models.UserProfile, error)
	Save(ctx context.Context, userID string, p models.UserProfile) error
}

// Adapter composes the identity provider, the profile store, and the
// token signer into the session surface the client uses. It owns the
// current signed-in state and broadcasts changes to observers.
type Adapter struct {
	provider    Provider
	profiles    ProfileStore
	signer      *TokenSigner
	uploader    Uploader
	emailDomain string
	log         *zap.Logger

	mu        sync.RWMutex
	session   *Session
	observers map[int]chan *User
	nextObs   int
}

func NewAdapter(provider Provider, profiles ProfileStore, signer *TokenSigner, uploader Uploader, emailDomain string, log *zap.Logger) *Adapter {
	return &Adapter{
		provider:    provider,
		profiles:    profiles,
		signer:      signer,
		uploader:    uploader,
		emailDomain: emailDomain,
		log:         log,
		observers:   make(map[int]chan *User),
	}
}

// SignUp registers a new account. All local validation runs before the
// provider is contacted; a validation failure never issues a network
// call. On success the account's display name is set to the student
// number and the profile record is written under the new user id.
// SignUp does not establish a session; the user signs in afterwards.
func (a *Adapter) SignUp(ctx context.Context, email, password, studentNumber string) (string, error) {
	email = strings.TrimSpace(email)
	if err := inputval.InstitutionalEmail(email, a.emailDomain); err != nil {
		return "", err
	}
	if err := inputval.StudentNumber(studentNumber); err != nil {
		return "", err
	}
	if err := inputval.Password(password); err != nil {
		return "", err
	}

	userID, err := a.provider.CreateUser(ctx, email, password)
	if err != nil {
		return "", err
	}

	if err := a.provider.UpdateDisplayName(ctx, userID, studentNumber); err != nil {
		return "", err
	}
	if err := a.profiles.Save(ctx, userID, models.UserProfile{
		Email:         email,
		StudentNumber: studentNumber,
	}); err != nil {
		return "", err
	}

	a.log.Info("account created", zap.String("user_id", userID))
	return userID, nil
}

// SignIn authenticates and establishes the current session. Observers
// are notified of the new signed-in user.
func (a *Adapter) SignIn(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(email)

	userID, err := a.provider.Authenticate(ctx, email, password)
	if err != nil {
		return Session{}, err
	}

	token, expires, err := a.signer.Sign(userID)
	if err != nil {
		return Session{}, err
	}

	sess := Session{UserID: userID, Email: email, Token: token, ExpiresAt: expires}

	a.mu.Lock()
	a.session = &sess
	a.broadcastLocked(&User{ID: userID, Email: email})
	a.mu.Unlock()

	a.log.Info("signed in", zap.String("user_id", userID))
	return sess, nil
}

// SignOut clears the current session and notifies observers. Signing
// out while signed out is a no-op.
func (a *Adapter) SignOut() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return
	}
	a.session = nil
	a.broadcastLocked(nil)
}

// CurrentSession returns a copy of the active session, or nil when
// signed out.
func (a *Adapter) CurrentSession() *Session {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.session == nil {
		return nil
	}
	sess := *a.session
	return &sess
}

// VerifyToken checks a previously issued session token and returns the
// user id it belongs to.
func (a *Adapter) VerifyToken(token string) (string, error) {
	return a.signer.Verify(token)
}

// Observe subscribes to signed-in state changes. The current state is
// delivered immediately; afterwards every sign-in, sign-out, and email
// change produces a new value (nil when signed out). Slow observers
// see only the latest state. The returned cancel func releases the
// subscription and is safe to call more than once; each subscription
// is independent of the others.
func (a *Adapter) Observe() (<-chan *User, func()) {
	ch := make(chan *User, 1)

	a.mu.Lock()
	id := a.nextObs
	a.nextObs++
	a.observers[id] = ch
	if a.session != nil {
		ch <- &User{ID: a.session.UserID, Email: a.session.Email}
	} else {
		ch <- nil
	}
	a.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			a.mu.Lock()
			delete(a.observers, id)
			a.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// broadcastLocked pushes the state to every observer, replacing any
// value the observer has not read yet. Caller holds a.mu; only
// broadcasters refill the buffer, so the retry terminates.
func (a *Adapter) broadcastLocked(u *User) {
	for _, ch := range a.observers {
		for {
			select {
			case ch <- u:
			default:
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}

// UpdateEmail changes the signed-in user's email. The current password
// is always re-verified first; the provider email change only runs
// after re-authentication succeeds.
func (a *Adapter) UpdateEmail(ctx context.Context, currentPassword, newEmail string) error {
	sess := a.CurrentSession()
	if sess == nil {
		return ErrNoSession
	}

	newEmail = strings.TrimSpace(newEmail)
	if err := inputval.InstitutionalEmail(newEmail, a.emailDomain); err != nil {
		return err
	}

	if err := a.provider.Reauthenticate(ctx, sess.UserID, currentPassword); err != nil {
		return err
	}
	if err := a.provider.UpdateEmail(ctx, sess.UserID, newEmail); err != nil {
		return err
	}

	a.mu.Lock()
	if a.session != nil && a.session.UserID == sess.UserID {
		a.session.Email = newEmail
		a.broadcastLocked(&User{ID: sess.UserID, Email: newEmail})
	}
	a.mu.Unlock()

	a.log.Info("email updated", zap.String("user_id", sess.UserID))
	return nil
}

// ProfileUpdate is the full desired profile state. Save semantics are
// full-replace: fields left empty here (except ImagePath) end up empty
// in the stored record.
type ProfileUpdate struct {
	CurrentPassword string // required only when Email differs from the session email
	Email           string
	StudentNumber   string
	DisplayName     string
	ImagePath       string // local file to upload as the new avatar, or "" to keep the current one
}

// SaveProfile applies a profile edit for the signed-in user in the
// fixed order: re-authenticate (when the email changes), upload the
// new avatar, change the provider email, update the display name, then
// replace the profile record. A failure at any step leaves the later
// steps unapplied.
func (a *Adapter) SaveProfile(ctx context.Context, upd ProfileUpdate) (models.UserProfile, error) {
	sess := a.CurrentSession()
	if sess == nil {
		return models.UserProfile{}, ErrNoSession
	}

	upd.Email = strings.TrimSpace(upd.Email)
	if err := inputval.InstitutionalEmail(upd.Email, a.emailDomain); err != nil {
		return models.UserProfile{}, err
	}
	if err := inputval.StudentNumber(upd.StudentNumber); err != nil {
		return models.UserProfile{}, err
	}

	current, err := a.profiles.Load(ctx, sess.UserID)
	if err != nil && err != profilestore.ErrNotFound {
		return models.UserProfile{}, err
	}

	emailChanged := upd.Email != sess.Email
	if emailChanged {
		if err := a.provider.Reauthenticate(ctx, sess.UserID, upd.CurrentPassword); err != nil {
			return models.UserProfile{}, err
		}
	}

	imageURL := ""
	if current != nil {
		imageURL = current.ImageURL
	}
	if upd.ImagePath != "" {
		if a.uploader == nil {
			return models.UserProfile{}, ErrNoUploader
		}
		imageURL, err = a.uploader.Upload(ctx, upd.ImagePath)
		if err != nil {
			return models.UserProfile{}, err
		}
	}

	if emailChanged {
		if err := a.provider.UpdateEmail(ctx, sess.UserID, upd.Email); err != nil {
			return models.UserProfile{}, err
		}
	}
	if upd.DisplayName != "" {
		if err := a.provider.UpdateDisplayName(ctx, sess.UserID, upd.DisplayName); err != nil {
			return models.UserProfile{}, err
		}
	}

	profile := models.UserProfile{
		Email:         upd.Email,
		StudentNumber: upd.StudentNumber,
		DisplayName:   upd.DisplayName,
		ImageURL:      imageURL,
	}
	if err := a.profiles.Save(ctx, sess.UserID, profile); err != nil {
		return models.UserProfile{}, err
	}

	if emailChanged {
		a.mu.Lock()
		if a.session != nil && a.session.UserID == sess.UserID {
			a.session.Email = upd.Email
			a.broadcastLocked(&User{ID: sess.UserID, Email: upd.Email})
		}
		a.mu.Unlock()
	}

	a.log.Info("profile saved", zap.String("user_id", sess.UserID))
	return profile, nil
}

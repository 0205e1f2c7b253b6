// Command campusfound is a line-oriented terminal client for the
// campus lost-and-found data layer. It drives the same components a
// mobile UI would: sign-up/sign-in, the live feed, posting items with
// photos, comment threads, and profile edits.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/campusfound/campusfound/internal/app/bootstrap"
	"github.com/campusfound/campusfound/internal/app/feed"
	"github.com/campusfound/campusfound/internal/app/media"
	itemstore "github.com/campusfound/campusfound/internal/app/store/items"
	profilestore "github.com/campusfound/campusfound/internal/app/store/profiles"
	"github.com/campusfound/campusfound/internal/app/system/identity"
	"github.com/campusfound/campusfound/internal/app/system/timeouts"
	"github.com/campusfound/campusfound/internal/domain/models"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("fatal", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	coreCfg, appCfg, err := bootstrap.LoadConfig(logger)
	if err != nil {
		return err
	}
	if err := bootstrap.ValidateConfig(coreCfg, appCfg, logger); err != nil {
		return err
	}

	ctx := context.Background()

	connectCtx, cancel := context.WithTimeout(ctx, timeouts.Long())
	deps, err := bootstrap.ConnectDB(connectCtx, coreCfg, appCfg, logger)
	cancel()
	if err != nil {
		return err
	}
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), timeouts.Medium())
		defer cancel()
		_ = bootstrap.Shutdown(shCtx, coreCfg, appCfg, deps, logger)
	}()

	schemaCtx, cancel := context.WithTimeout(ctx, timeouts.Long())
	err = bootstrap.EnsureSchema(schemaCtx, coreCfg, appCfg, deps, logger)
	cancel()
	if err != nil {
		return err
	}

	uploader := media.NewUploader(deps.BlobStore, logger)
	items := itemstore.New(deps.MongoDatabase)
	profiles := profilestore.New(deps.MongoDatabase)
	signer := identity.NewTokenSigner(appCfg.TokenSecret, appCfg.TokenTTL)
	provider := identity.NewMongoProvider(deps.MongoDatabase)
	adapter := identity.NewAdapter(provider, profiles, signer, uploader, appCfg.EmailDomain, logger)

	c := &client{
		adapter:  adapter,
		items:    items,
		profiles: profiles,
		uploader: uploader,
		logger:   logger,
		out:      os.Stdout,
	}
	defer c.closeFeed()

	fmt.Fprintln(c.out, "campusfound — type 'help' for commands")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(c.out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		c.dispatch(ctx, line)
	}
}

// localSub backs the feed when change streams are unavailable
// (standalone mongod). The refresh command re-reads the collection and
// pushes a new snapshot.
type localSub struct {
	ch   chan []models.Item
	once sync.Once
}

func (s *localSub) Snapshots() <-chan []models.Item { return s.ch }
func (s *localSub) Close()                          { s.once.Do(func() { close(s.ch) }) }

type client struct {
	adapter  *identity.Adapter
	items    *itemstore.Store
	profiles *profilestore.Store
	uploader *media.Uploader
	logger   *zap.Logger
	out      *os.File

	feed    *feed.Feed
	local   *localSub // non-nil when the feed runs without a change stream
	listing []models.Item
}

func (c *client) dispatch(ctx context.Context, line string) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]

	var err error
	switch cmd {
	case "help":
		c.printHelp()
	case "signup":
		err = c.cmdSignup(ctx, args)
	case "login":
		err = c.cmdLogin(ctx, args)
	case "logout":
		err = c.cmdLogout()
	case "whoami":
		err = c.cmdWhoami()
	case "post":
		err = c.cmdPost(ctx, args)
	case "feed":
		err = c.cmdFeed("")
	case "mine":
		err = c.cmdMine()
	case "search":
		err = c.cmdFeed(strings.Join(args, " "))
	case "refresh":
		err = c.cmdRefresh(ctx)
	case "open":
		err = c.cmdOpen(args)
	case "comment":
		err = c.cmdComment(ctx, strings.Join(args, " "))
	case "reply":
		err = c.cmdReply()
	case "close":
		err = c.cmdCloseThread()
	case "profile":
		err = c.cmdProfile(ctx)
	case "saveprofile":
		err = c.cmdSaveProfile(ctx, args)
	default:
		fmt.Fprintf(c.out, "unknown command %q; type 'help'\n", cmd)
	}
	if err != nil {
		fmt.Fprintln(c.out, "error:", err)
	}
}

func (c *client) printHelp() {
	fmt.Fprint(c.out, `commands:
  signup <email> <password> <student-number>
  login <email> <password>
  logout
  whoami
  post <location> <color> <category> <text...> [--image <path>]
  feed                     show all posts, newest first
  mine                     show my posts
  search <category>        filter the feed by category
  refresh                  re-read posts (only needed without change streams)
  open <n>                 open the comment thread of listing entry n
  comment <text...>        comment on the open thread
  reply                    prefill a mention of the thread's author
  close                    close the comment thread
  profile                  show my profile
  saveprofile <email> <student-number> [--name <name>] [--image <path>] [--password <current>]
  quit
`)
}

func (c *client) cmdSignup(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return fmt.Errorf("usage: signup <email> <password> <student-number>")
	}
	opCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	if _, err := c.adapter.SignUp(opCtx, args[0], args[1], args[2]); err != nil {
		return err
	}
	fmt.Fprintln(c.out, "account created; log in to continue")
	return nil
}

func (c *client) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: login <email> <password>")
	}
	opCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	sess, err := c.adapter.SignIn(opCtx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "signed in as %s\n", sess.Email)

	c.closeFeed()
	return c.openFeed(ctx, sess.Email)
}

// openFeed starts the live feed for the signed-in viewer, falling back
// to manual refresh when the deployment has no change streams.
func (c *client) openFeed(ctx context.Context, viewerEmail string) error {
	sub, err := c.items.Watch(ctx)
	if err != nil {
		c.logger.Warn("live updates unavailable, use 'refresh'", zap.Error(err))
		c.local = &localSub{ch: make(chan []models.Item, 1)}
		c.feed = feed.New(c.local, c.items, viewerEmail, c.logger)
		return c.cmdRefresh(ctx)
	}
	c.feed = feed.New(sub, c.items, viewerEmail, c.logger)
	return nil
}

func (c *client) closeFeed() {
	if c.feed != nil {
		c.feed.Close()
		c.feed = nil
		c.local = nil
	}
	c.listing = nil
}

func (c *client) cmdLogout() error {
	if c.adapter.CurrentSession() == nil {
		return identity.ErrNoSession
	}
	c.adapter.SignOut()
	c.closeFeed()
	fmt.Fprintln(c.out, "signed out")
	return nil
}

func (c *client) cmdWhoami() error {
	sess := c.adapter.CurrentSession()
	if sess == nil {
		return identity.ErrNoSession
	}
	fmt.Fprintf(c.out, "%s (expires %s)\n", sess.Email, sess.ExpiresAt.Format("15:04 Jan 2"))
	return nil
}

func (c *client) cmdPost(ctx context.Context, args []string) error {
	sess := c.adapter.CurrentSession()
	if sess == nil {
		return identity.ErrNoSession
	}

	args, imagePath := extractFlag(args, "--image")
	if len(args) < 4 {
		return fmt.Errorf("usage: post <location> <color> <category> <text...> [--image <path>]")
	}
	draft := itemstore.Draft{
		Location: args[0],
		Color:    args[1],
		Category: args[2],
		Text:     strings.Join(args[3:], " "),
	}

	if imagePath != "" {
		upCtx, cancel := context.WithTimeout(ctx, timeouts.Long())
		url, err := c.uploader.Upload(upCtx, imagePath)
		cancel()
		if err != nil {
			return err
		}
		draft.Image = url
	}

	opCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()
	item, err := c.items.Create(opCtx, draft, sess.Email)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "posted %s\n", item.PostID)
	return nil
}

func (c *client) cmdRefresh(ctx context.Context) error {
	if c.local == nil {
		return nil // live feed refreshes itself
	}
	opCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()

	snap, err := c.items.List(opCtx)
	if err != nil {
		return err
	}
	for {
		select {
		case c.local.ch <- snap:
			return nil
		default:
			select {
			case <-c.local.ch:
			default:
			}
		}
	}
}

func (c *client) cmdFeed(query string) error {
	if c.feed == nil {
		return identity.ErrNoSession
	}
	c.feed.SetQuery(query)
	c.listing = c.feed.Items()
	c.renderListing()
	return nil
}

func (c *client) cmdMine() error {
	if c.feed == nil {
		return identity.ErrNoSession
	}
	c.listing = c.feed.Mine()
	c.renderListing()
	return nil
}

func (c *client) renderListing() {
	if len(c.listing) == 0 {
		fmt.Fprintln(c.out, "no posts")
		return
	}
	for i, it := range c.listing {
		marker := ""
		if len(it.Comments) > 0 {
			marker = fmt.Sprintf(" [%d comments]", len(it.Comments))
		}
		fmt.Fprintf(c.out, "%2d. [%s] %s — %s at %s (%s)%s\n",
			i+1, it.Category, it.Text, it.Color, it.Location, it.UserEmail, marker)
	}
}

func (c *client) cmdOpen(args []string) error {
	if c.feed == nil {
		return identity.ErrNoSession
	}
	if len(args) != 1 {
		return fmt.Errorf("usage: open <n>")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 || n > len(c.listing) {
		return fmt.Errorf("no listing entry %q; run 'feed' first", args[0])
	}

	c.feed.OpenThread(c.listing[n-1].PostID)
	c.renderThread()
	return nil
}

func (c *client) renderThread() {
	item, ok := c.feed.Thread()
	if !ok {
		fmt.Fprintln(c.out, "thread no longer available")
		return
	}
	fmt.Fprintf(c.out, "[%s] %s (%s)\n", item.Category, item.Text, item.UserEmail)
	for _, cm := range item.SortedComments() {
		fmt.Fprintf(c.out, "  %s: %s\n", cm.UserEmail, cm.Text)
	}
}

func (c *client) cmdComment(ctx context.Context, text string) error {
	if c.feed == nil {
		return identity.ErrNoSession
	}
	c.feed.SetCompose(text)

	opCtx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()
	if err := c.feed.SubmitComment(opCtx); err != nil {
		return err
	}
	c.renderThread()
	return nil
}

func (c *client) cmdReply() error {
	if c.feed == nil {
		return identity.ErrNoSession
	}
	item, ok := c.feed.Thread()
	if !ok {
		return feed.ErrNoThread
	}
	c.feed.Reply(item.UserEmail)
	fmt.Fprintf(c.out, "compose: %s\n", c.feed.Compose())
	return nil
}

func (c *client) cmdCloseThread() error {
	if c.feed == nil {
		return identity.ErrNoSession
	}
	c.feed.CloseThread()
	return nil
}

func (c *client) cmdProfile(ctx context.Context) error {
	sess := c.adapter.CurrentSession()
	if sess == nil {
		return identity.ErrNoSession
	}
	opCtx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	p, err := c.profiles.Load(opCtx, sess.UserID)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "email: %s\nstudent number: %s\n", p.Email, p.StudentNumber)
	if p.DisplayName != "" {
		fmt.Fprintf(c.out, "name: %s\n", p.DisplayName)
	}
	if p.ImageURL != "" {
		fmt.Fprintf(c.out, "photo: %s\n", p.ImageURL)
	}
	return nil
}

func (c *client) cmdSaveProfile(ctx context.Context, args []string) error {
	args, name := extractFlag(args, "--name")
	args, imagePath := extractFlag(args, "--image")
	args, password := extractFlag(args, "--password")
	if len(args) != 2 {
		return fmt.Errorf("usage: saveprofile <email> <student-number> [--name <name>] [--image <path>] [--password <current>]")
	}

	opCtx, cancel := context.WithTimeout(ctx, timeouts.Long())
	defer cancel()

	_, err := c.adapter.SaveProfile(opCtx, identity.ProfileUpdate{
		CurrentPassword: password,
		Email:           args[0],
		StudentNumber:   args[1],
		DisplayName:     name,
		ImagePath:       imagePath,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "profile saved")
	return nil
}

// extractFlag removes "--flag value" from args and returns the value.
func extractFlag(args []string, flag string) ([]string, string) {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			value := args[i+1]
			out := append(append([]string(nil), args[:i]...), args[i+2:]...)
			return out, value
		}
	}
	return args, ""
}

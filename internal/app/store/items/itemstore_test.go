package itemstore_test

import (
	"errors"
	"strings"
	"testing"

	itemstore "github.com/campusfound/campusfound/internal/app/store/items"
	"github.com/campusfound/campusfound/internal/app/system/inputval"
	"github.com/campusfound/campusfound/internal/testutil"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := itemstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	draft := itemstore.Draft{
		Text:     "Found a black umbrella near the gym entrance",
		Location: "Gymnasium",
		Color:    "black",
		Category: "Umbrella",
	}

	item, err := store.Create(ctx, draft, "alice@tip.edu.ph")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if item.PostID == "" {
		t.Error("expected a generated postId")
	}
	if item.Timestamp == 0 {
		t.Error("expected a creation timestamp")
	}
	if item.UserEmail != "alice@tip.edu.ph" {
		t.Errorf("expected author email, got %q", item.UserEmail)
	}

	// Verify round-trip
	saved, err := store.Get(ctx, item.PostID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if saved.Text != draft.Text {
		t.Errorf("expected text %q, got %q", draft.Text, saved.Text)
	}
	if saved.Category != "Umbrella" {
		t.Errorf("expected category 'Umbrella', got %q", saved.Category)
	}
	// No photo attached: the image field stays empty
	if saved.Image != "" {
		t.Errorf("expected empty image URL, got %q", saved.Image)
	}
}

func TestStore_Create_UniquePostIDs(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := itemstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	draft := itemstore.Draft{
		Text:     "Lost wallet",
		Location: "Cafeteria",
		Color:    "brown",
		Category: "Wallet",
	}

	a, err := store.Create(ctx, draft, "alice@tip.edu.ph")
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	b, err := store.Create(ctx, draft, "alice@tip.edu.ph")
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}

	if a.PostID == b.PostID {
		t.Errorf("expected distinct postIds, both got %q", a.PostID)
	}
}

func TestStore_Create_ValidationBeforeWrite(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := itemstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Blank category after trimming must fail validation
	draft := itemstore.Draft{
		Text:     "Lost keys",
		Location: "Parking lot",
		Color:    "silver",
		Category: "   ",
	}

	_, err := store.Create(ctx, draft, "alice@tip.edu.ph")
	if !errors.Is(err, inputval.ErrEmptyField) {
		t.Fatalf("expected ErrEmptyField, got %v", err)
	}

	// Verify nothing was written
	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected no items after failed validation, got %d", len(items))
	}
}

func TestStore_Create_SanitizesText(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := itemstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	draft := itemstore.Draft{
		Text:     "<script>alert('x')</script>Found a phone",
		Location: "Library",
		Color:    "blue",
		Category: "Phone",
	}

	item, err := store.Create(ctx, draft, "bob@tip.edu.ph")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if strings.Contains(item.Text, "<script>") {
		t.Errorf("expected script tag to be stripped, got %q", item.Text)
	}
	if !strings.Contains(item.Text, "Found a phone") {
		t.Errorf("expected plain text to survive, got %q", item.Text)
	}
}

func TestStore_Get_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := itemstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Get(ctx, "no-such-post")
	if !errors.Is(err, itemstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_List_InsertionOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := itemstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first := fx.CreateItem(ctx, "alice@tip.edu.ph", "Umbrella")
	second := fx.CreateItem(ctx, "bob@tip.edu.ph", "Wallet")
	third := fx.CreateItem(ctx, "alice@tip.edu.ph", "Phone")

	items, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	want := []string{first.PostID, second.PostID, third.PostID}
	for i, id := range want {
		if items[i].PostID != id {
			t.Errorf("position %d: expected %q, got %q", i, id, items[i].PostID)
		}
	}
}

func TestStore_ListByAuthor(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := itemstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fx.CreateItem(ctx, "alice@tip.edu.ph", "Umbrella")
	fx.CreateItem(ctx, "bob@tip.edu.ph", "Wallet")
	fx.CreateItem(ctx, "alice@tip.edu.ph", "Phone")

	mine, err := store.ListByAuthor(ctx, "alice@tip.edu.ph")
	if err != nil {
		t.Fatalf("ListByAuthor failed: %v", err)
	}

	if len(mine) != 2 {
		t.Fatalf("expected 2 items for alice, got %d", len(mine))
	}
	for _, it := range mine {
		if it.UserEmail != "alice@tip.edu.ph" {
			t.Errorf("expected alice's item, got author %q", it.UserEmail)
		}
	}
}

func TestStore_AppendComment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := itemstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	item := fx.CreateItem(ctx, "alice@tip.edu.ph", "Umbrella")

	key, err := store.AppendComment(ctx, item.PostID, "bob@tip.edu.ph", "Is this still at the office?")
	if err != nil {
		t.Fatalf("AppendComment failed: %v", err)
	}
	if key == "" {
		t.Fatal("expected a generated comment key")
	}

	saved, err := store.Get(ctx, item.PostID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	c, ok := saved.Comments[key]
	if !ok {
		t.Fatalf("expected comment under key %q", key)
	}
	if c.UserEmail != "bob@tip.edu.ph" {
		t.Errorf("expected commenter email, got %q", c.UserEmail)
	}
	if c.Text != "Is this still at the office?" {
		t.Errorf("unexpected comment text %q", c.Text)
	}
}

func TestStore_AppendComment_Order(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := itemstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	item := fx.CreateItem(ctx, "alice@tip.edu.ph", "Wallet")

	if _, err := store.AppendComment(ctx, item.PostID, "bob@tip.edu.ph", "first"); err != nil {
		t.Fatalf("first AppendComment failed: %v", err)
	}
	if _, err := store.AppendComment(ctx, item.PostID, "carol@tip.edu.ph", "second"); err != nil {
		t.Fatalf("second AppendComment failed: %v", err)
	}

	saved, err := store.Get(ctx, item.PostID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}

	comments := saved.SortedComments()
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if comments[0].Text != "first" || comments[1].Text != "second" {
		t.Errorf("expected append order, got %q then %q", comments[0].Text, comments[1].Text)
	}
}

func TestStore_AppendComment_EmptyTextNoOp(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := itemstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	item := fx.CreateItem(ctx, "alice@tip.edu.ph", "Phone")

	key, err := store.AppendComment(ctx, item.PostID, "bob@tip.edu.ph", "   ")
	if err != nil {
		t.Fatalf("AppendComment failed: %v", err)
	}
	if key != "" {
		t.Errorf("expected empty key for no-op, got %q", key)
	}

	saved, err := store.Get(ctx, item.PostID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(saved.Comments) != 0 {
		t.Errorf("expected no comments, got %d", len(saved.Comments))
	}
}

func TestStore_AppendComment_UnknownPost(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := itemstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.AppendComment(ctx, "no-such-post", "bob@tip.edu.ph", "hello?")
	if !errors.Is(err, itemstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

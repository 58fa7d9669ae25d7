package query

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/mtsalles/wastore/internal/store"
	"go.uber.org/zap"
)

const testSession = "main"

func testFacade(t *testing.T) (*Facade, *store.DB) {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return New(testSession, db, zap.NewNop()), db
}

func TestLoadMessagesNormalizesParams(t *testing.T) {
	f, db := testFacade(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		m := &store.Message{RemoteJID: "5551234@s.whatsapp.net", ID: fmt.Sprintf("m%d", i), MessageTimestamp: int64(i)}
		if err := db.UpsertMessage(ctx, testSession, m); err != nil {
			t.Fatal(err)
		}
	}

	// Bare phone number and a junk limit both normalize.
	env, err := f.LoadMessages(ctx, "5551234", MessageParams{Limit: "garbage"})
	if err != nil {
		t.Fatal(err)
	}
	if len(env.Messages) != 3 {
		t.Fatalf("got %d messages, want 3", len(env.Messages))
	}

	env, err = f.LoadMessages(ctx, "5551234", MessageParams{Limit: "2"})
	if err != nil {
		t.Fatal(err)
	}
	if len(env.Messages) != 2 || !env.HasMore || env.NextCursor == nil {
		t.Fatalf("limited page = %d msgs hasMore=%v cursor=%v, want 2/true/set",
			len(env.Messages), env.HasMore, env.NextCursor)
	}

	// Follow the string-typed cursor the way an HTTP caller would.
	env, err = f.LoadMessages(ctx, "5551234", MessageParams{
		Limit:        "2",
		CursorID:     env.NextCursor.ID,
		CursorFromMe: "false",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(env.Messages) != 1 || env.HasMore {
		t.Fatalf("final page = %d msgs hasMore=%v, want 1/false", len(env.Messages), env.HasMore)
	}
}

func TestListChatsTypeFilter(t *testing.T) {
	f, db := testFacade(t)
	ctx := context.Background()

	if err := db.UpsertChat(ctx, testSession, &store.Chat{ID: "111@s.whatsapp.net"}); err != nil {
		t.Fatal(err)
	}
	if err := db.UpsertChat(ctx, testSession, &store.Chat{ID: "grp@g.us"}); err != nil {
		t.Fatal(err)
	}

	env, err := f.ListChats(ctx, ChatParams{IsGroup: "true"})
	if err != nil {
		t.Fatal(err)
	}
	if len(env.Chats) != 1 || env.Chats[0].ID != "grp@g.us" {
		t.Errorf("group filter returned %v", env.Chats)
	}

	env, err = f.ListChats(ctx, ChatParams{IsGroup: "false"})
	if err != nil {
		t.Fatal(err)
	}
	if len(env.Chats) != 1 || env.Chats[0].ID != "111@s.whatsapp.net" {
		t.Errorf("direct filter returned %v", env.Chats)
	}

	env, err = f.ListChats(ctx, ChatParams{})
	if err != nil {
		t.Fatal(err)
	}
	if len(env.Chats) != 2 {
		t.Errorf("unfiltered list has %d chats, want 2", len(env.Chats))
	}
}

func TestUnavailableOnStoreError(t *testing.T) {
	f, db := testFacade(t)
	ctx := context.Background()
	_ = db.Close()

	if _, err := f.LoadMessages(ctx, "5551234", MessageParams{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("LoadMessages error = %v, want ErrUnavailable", err)
	}
	if _, err := f.ListChats(ctx, ChatParams{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("ListChats error = %v, want ErrUnavailable", err)
	}
}

func TestCanonicalJID(t *testing.T) {
	tests := []struct {
		id    string
		group bool
		want  string
	}{
		{"5551234", false, "5551234@s.whatsapp.net"},
		{"12036304", true, "12036304@g.us"},
		{"5551234@s.whatsapp.net", false, "5551234@s.whatsapp.net"},
		{"5551234:7@s.whatsapp.net", false, "5551234@s.whatsapp.net"},
		{"grp@g.us", true, "grp@g.us"},
	}
	for _, tt := range tests {
		if got := CanonicalJID(tt.id, tt.group); got != tt.want {
			t.Errorf("CanonicalJID(%q, %v) = %q, want %q", tt.id, tt.group, got, tt.want)
		}
	}
}

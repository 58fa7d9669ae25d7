package query

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mtsalles/wastore/internal/store"
	"go.mau.fi/whatsmeow/types"
	"go.uber.org/zap"
)

// ErrUnavailable marks a retryable read failure. Callers get this instead of
// partial data when the store errors or the deadline expires.
var ErrUnavailable = errors.New("store temporarily unavailable")

const (
	defaultMessageLimit = 25
	defaultChatLimit    = 20
)

// Facade is the read-side API consumed by the serving layer. It normalizes
// HTTP-style string parameters and shapes page envelopes; everything else is
// delegated to the store. Callers supply deadline contexts.
type Facade struct {
	sessionID string
	db        *store.DB
	logger    *zap.Logger
}

// New creates a query facade bound to one session.
func New(sessionID string, db *store.DB, logger *zap.Logger) *Facade {
	return &Facade{sessionID: sessionID, db: db, logger: logger}
}

// MessageParams are the raw query parameters for LoadMessages.
type MessageParams struct {
	Limit        string
	CursorID     string
	CursorFromMe string
	IsGroup      string
}

// MessagesEnvelope is one chronological page of conversation history.
type MessagesEnvelope struct {
	Messages   []store.Message
	NextCursor *store.MessageCursor
	HasMore    bool
}

// LoadMessages returns paginated history for one conversation.
func (f *Facade) LoadMessages(ctx context.Context, jid string, p MessageParams) (*MessagesEnvelope, error) {
	limit := parseLimit(p.Limit, defaultMessageLimit)
	var cursor *store.MessageCursor
	if p.CursorID != "" {
		cursor = &store.MessageCursor{ID: p.CursorID, FromMe: parseBool(p.CursorFromMe)}
	}
	canonical := CanonicalJID(jid, parseBool(p.IsGroup))

	page, err := f.db.LoadMessages(ctx, f.sessionID, canonical, limit, cursor)
	if err != nil {
		f.logger.Error("load messages failed", zap.String("jid", canonical), zap.Error(err))
		return nil, fmt.Errorf("%w: load messages: %v", ErrUnavailable, err)
	}
	return &MessagesEnvelope{
		Messages:   page.Messages,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}, nil
}

// ChatParams are the raw query parameters for ListChats. IsGroup empty means
// no conversation-type filter.
type ChatParams struct {
	Limit   string
	Cursor  string
	IsGroup string
}

// ChatsEnvelope is one page of the chat list.
type ChatsEnvelope struct {
	Chats      []store.Chat
	NextCursor string
	HasMore    bool
}

// ListChats returns the paginated chat list, newest activity first.
func (f *Facade) ListChats(ctx context.Context, p ChatParams) (*ChatsEnvelope, error) {
	limit := parseLimit(p.Limit, defaultChatLimit)
	suffix := ""
	if p.IsGroup != "" {
		if parseBool(p.IsGroup) {
			suffix = "@" + types.GroupServer
		} else {
			suffix = "@" + types.DefaultUserServer
		}
	}

	page, err := f.db.ListChats(ctx, f.sessionID, limit, p.Cursor, suffix)
	if err != nil {
		f.logger.Error("list chats failed", zap.Error(err))
		return nil, fmt.Errorf("%w: list chats: %v", ErrUnavailable, err)
	}
	return &ChatsEnvelope{
		Chats:      page.Chats,
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}, nil
}

// CanonicalJID turns a bare phone number or group id into a full JID and
// normalizes away device and agent suffixes.
func CanonicalJID(id string, group bool) string {
	if !strings.ContainsRune(id, '@') {
		if group {
			id += "@" + types.GroupServer
		} else {
			id += "@" + types.DefaultUserServer
		}
	}
	jid, err := types.ParseJID(id)
	if err != nil {
		return id
	}
	return jid.ToNonAD().String()
}

func parseLimit(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func parseBool(s string) bool {
	v, err := strconv.ParseBool(s)
	return err == nil && v
}

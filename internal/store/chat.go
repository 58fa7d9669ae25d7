package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"
)

// UpsertChat inserts or updates a chat in a single atomic statement.
// Fields left nil keep their stored value; absent rows get safe defaults
// (unread_count 0, not_spam true). last_updated strictly increases on every
// write so descending pagination over the chat list stays stable.
func (db *DB) UpsertChat(ctx context.Context, sessionID string, c *Chat) error {
	now := time.Now().UnixMilli()
	_, err := db.ExecContext(ctx, `
		INSERT INTO chats (session_id, chat_id, conversation_timestamp, unread_count, name, not_spam, archived, pinned, mute_end_time, last_updated)
		VALUES (?, ?, ?, COALESCE(?, 0), ?, COALESCE(?, 1), COALESCE(?, 0), COALESCE(?, 0), ?, ?)
		ON CONFLICT(session_id, chat_id) DO UPDATE SET
			conversation_timestamp = COALESCE(?, chats.conversation_timestamp),
			unread_count = COALESCE(?, chats.unread_count),
			name = COALESCE(?, chats.name),
			not_spam = COALESCE(?, chats.not_spam),
			archived = COALESCE(?, chats.archived),
			pinned = COALESCE(?, chats.pinned),
			mute_end_time = COALESCE(?, chats.mute_end_time),
			last_updated = MAX(?, chats.last_updated + 1)`,
		sessionID, c.ID, c.ConversationTimestamp, c.UnreadCount, c.Name, c.NotSpam, c.Archived, c.Pinned, c.MuteEndTime, now,
		c.ConversationTimestamp, c.UnreadCount, c.Name, c.NotSpam, c.Archived, c.Pinned, c.MuteEndTime, now)
	return err
}

// UpdateChat applies a partial-field merge. Protocol update events race with
// creates, so an update for an unknown chat synthesizes the row instead of
// failing; it therefore shares the upsert path.
func (db *DB) UpdateChat(ctx context.Context, sessionID string, c *Chat) error {
	return db.UpsertChat(ctx, sessionID, c)
}

// GetChat returns a single chat, or nil if absent.
func (db *DB) GetChat(ctx context.Context, sessionID, chatID string) (*Chat, error) {
	var c Chat
	err := db.QueryRowContext(ctx, `
		SELECT pk_id, chat_id, conversation_timestamp, unread_count, name, not_spam, archived, pinned, mute_end_time, last_updated
		FROM chats WHERE session_id = ? AND chat_id = ?`, sessionID, chatID).
		Scan(&c.PkID, &c.ID, &c.ConversationTimestamp, &c.UnreadCount, &c.Name, &c.NotSpam, &c.Archived, &c.Pinned, &c.MuteEndTime, &c.LastUpdated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListChats returns one page of chats ordered by last_updated descending.
// cursor is the opaque pk_id token of the last chat on the previous page;
// suffix optionally filters by conversation type (e.g. "@g.us").
// It fetches limit+1 rows to decide HasMore without a second query.
func (db *DB) ListChats(ctx context.Context, sessionID string, limit int, cursor, suffix string) (*ChatPage, error) {
	if limit <= 0 {
		limit = 20
	}

	where := "session_id = ?"
	args := []any{sessionID}
	if suffix != "" {
		where += " AND chat_id LIKE '%' || ?"
		args = append(args, suffix)
	}
	if cursor != "" {
		pkID, err := strconv.ParseInt(cursor, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse chat cursor %q: %w", cursor, err)
		}
		var lastUpdated int64
		err = db.QueryRowContext(ctx, `SELECT last_updated FROM chats WHERE session_id = ? AND pk_id = ?`,
			sessionID, pkID).Scan(&lastUpdated)
		switch {
		case err == sql.ErrNoRows:
			// Cursor row no longer exists; serve the first page.
		case err != nil:
			return nil, err
		default:
			where += " AND (last_updated < ? OR (last_updated = ? AND pk_id < ?))"
			args = append(args, lastUpdated, lastUpdated, pkID)
		}
	}
	args = append(args, limit+1)

	rows, err := db.QueryContext(ctx, `
		SELECT pk_id, chat_id, conversation_timestamp, unread_count, name, not_spam, archived, pinned, mute_end_time, last_updated
		FROM chats WHERE `+where+`
		ORDER BY last_updated DESC, pk_id DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var chats []Chat
	for rows.Next() {
		var c Chat
		if err := rows.Scan(&c.PkID, &c.ID, &c.ConversationTimestamp, &c.UnreadCount, &c.Name, &c.NotSpam, &c.Archived, &c.Pinned, &c.MuteEndTime, &c.LastUpdated); err != nil {
			return nil, err
		}
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	page := &ChatPage{}
	if len(chats) > limit {
		page.HasMore = true
		chats = chats[:limit]
	}
	page.Chats = chats
	if page.HasMore && len(chats) > 0 {
		page.NextCursor = strconv.FormatInt(chats[len(chats)-1].PkID, 10)
	}
	return page, nil
}

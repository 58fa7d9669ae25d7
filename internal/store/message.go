package store

import (
	"context"
	"database/sql"
)

// UpsertMessage inserts or updates a message, keyed by the natural identity
// (session_id, remote_jid, msg_id). A conflicting row only gets its status and
// serialized payload refreshed; all other fields are write-once.
func (db *DB) UpsertMessage(ctx context.Context, sessionID string, m *Message) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO messages (session_id, remote_jid, msg_id, from_me, agent_id, chat_id, push_name, broadcast, message, message_type, message_timestamp, participant, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, remote_jid, msg_id) DO UPDATE SET
			status = excluded.status,
			message = COALESCE(excluded.message, messages.message)`,
		sessionID, m.RemoteJID, m.ID, m.FromMe, m.AgentID, m.ChatID, m.PushName, m.Broadcast, m.Payload, m.MessageType, m.MessageTimestamp, m.Participant, m.Status)
	return err
}

// UpdateMessage overwrites a message's status and, when present, its payload.
// Updates can outrun creates, so an unknown message synthesizes a minimal row
// instead of failing.
func (db *DB) UpdateMessage(ctx context.Context, sessionID, remoteJID, msgID string, status *string, payload []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO messages (session_id, remote_jid, msg_id, status, message)
		VALUES (?, ?, ?, COALESCE(?, ''), ?)
		ON CONFLICT(session_id, remote_jid, msg_id) DO UPDATE SET
			status = COALESCE(?, messages.status),
			message = COALESCE(?, messages.message)`,
		sessionID, remoteJID, msgID, status, payload,
		status, payload)
	return err
}

// LoadMessages returns one page of a conversation. Rows are selected newest
// first by (message_timestamp, pk_id) and reversed before returning, so the
// page reads chronologically. cursor points at the oldest message of the
// previous page; the returned rows strictly precede it. An unknown cursor
// degrades to the first page.
func (db *DB) LoadMessages(ctx context.Context, sessionID, jid string, limit int, cursor *MessageCursor) (*MessagePage, error) {
	if limit <= 0 {
		limit = 25
	}

	where := "session_id = ? AND remote_jid = ?"
	args := []any{sessionID, jid}
	if cursor != nil {
		var ts, pkID int64
		err := db.QueryRowContext(ctx, `
			SELECT message_timestamp, pk_id FROM messages
			WHERE session_id = ? AND remote_jid = ? AND msg_id = ? AND from_me = ?`,
			sessionID, jid, cursor.ID, cursor.FromMe).Scan(&ts, &pkID)
		switch {
		case err == sql.ErrNoRows:
			// Cursor message not found; serve the first page.
		case err != nil:
			return nil, err
		default:
			where += " AND (message_timestamp < ? OR (message_timestamp = ? AND pk_id < ?))"
			args = append(args, ts, ts, pkID)
		}
	}
	args = append(args, limit)

	rows, err := db.QueryContext(ctx, `
		SELECT pk_id, remote_jid, msg_id, from_me, agent_id, chat_id, push_name, broadcast, message, message_type, message_timestamp, participant, status
		FROM messages WHERE `+where+`
		ORDER BY message_timestamp DESC, pk_id DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.PkID, &m.RemoteJID, &m.ID, &m.FromMe, &m.AgentID, &m.ChatID, &m.PushName, &m.Broadcast, &m.Payload, &m.MessageType, &m.MessageTimestamp, &m.Participant, &m.Status); err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Flip to chronological order for display.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	page := &MessagePage{Messages: msgs, HasMore: len(msgs) == limit}
	if page.HasMore && len(msgs) > 0 {
		page.NextCursor = &MessageCursor{ID: msgs[0].ID, FromMe: msgs[0].FromMe}
	}
	return page, nil
}

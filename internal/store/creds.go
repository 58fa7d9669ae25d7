package store

import (
	"context"
	"database/sql"
	"time"
)

// GetCredential returns the stored blob for a credential key, or nil when the
// key is absent.
func (db *DB) GetCredential(ctx context.Context, sessionID, category, keyID string) ([]byte, error) {
	var data []byte
	err := db.QueryRowContext(ctx, `
		SELECT data FROM credentials WHERE session_id = ? AND category = ? AND key_id = ?`,
		sessionID, category, keyID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// PutCredential inserts or replaces a credential blob.
func (db *DB) PutCredential(ctx context.Context, sessionID, category, keyID string, data []byte) error {
	now := time.Now().UnixMilli()
	_, err := db.ExecContext(ctx, `
		INSERT INTO credentials (session_id, category, key_id, data, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(session_id, category, key_id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		sessionID, category, keyID, data, now)
	return err
}

// DeleteCredential removes a credential blob. Deleting an absent key succeeds.
func (db *DB) DeleteCredential(ctx context.Context, sessionID, category, keyID string) error {
	_, err := db.ExecContext(ctx, `
		DELETE FROM credentials WHERE session_id = ? AND category = ? AND key_id = ?`,
		sessionID, category, keyID)
	return err
}

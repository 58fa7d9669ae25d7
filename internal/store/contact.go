package store

import (
	"context"
	"database/sql"
)

// UpsertContact inserts or updates a contact. Nil fields keep stored values.
func (db *DB) UpsertContact(ctx context.Context, sessionID string, c *Contact) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO contacts (session_id, contact_id, name, notify, verified_name, img_url, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, contact_id) DO UPDATE SET
			name = COALESCE(?, contacts.name),
			notify = COALESCE(?, contacts.notify),
			verified_name = COALESCE(?, contacts.verified_name),
			img_url = COALESCE(?, contacts.img_url),
			status = COALESCE(?, contacts.status)`,
		sessionID, c.ID, c.Name, c.Notify, c.VerifiedName, c.ImgURL, c.Status,
		c.Name, c.Notify, c.VerifiedName, c.ImgURL, c.Status)
	return err
}

// UpdateContact applies a partial-field merge, synthesizing the row when the
// update arrives before the create.
func (db *DB) UpdateContact(ctx context.Context, sessionID string, c *Contact) error {
	return db.UpsertContact(ctx, sessionID, c)
}

// GetContact returns a contact, or nil if absent.
func (db *DB) GetContact(ctx context.Context, sessionID, contactID string) (*Contact, error) {
	var c Contact
	err := db.QueryRowContext(ctx, `
		SELECT contact_id, name, notify, verified_name, img_url, status
		FROM contacts WHERE session_id = ? AND contact_id = ?`, sessionID, contactID).
		Scan(&c.ID, &c.Name, &c.Notify, &c.VerifiedName, &c.ImgURL, &c.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

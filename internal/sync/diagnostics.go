package sync

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/mtsalles/wastore/internal/store"
	"go.uber.org/zap"
)

// Diagnostics keeps best-effort ingest counters in the sync_state table:
// resolution misses, skipped control messages and per-kind event counts.
// Counter writes are observability, not state, so failures are logged and
// otherwise ignored.
type Diagnostics struct {
	sessionID string
	db        *store.DB
	logger    *zap.Logger
}

// NewDiagnostics creates a diagnostics recorder bound to one session.
func NewDiagnostics(sessionID string, db *store.DB, logger *zap.Logger) *Diagnostics {
	return &Diagnostics{sessionID: sessionID, db: db, logger: logger}
}

// RecordResolutionMiss notes an identifier that could not be canonicalized.
func (d *Diagnostics) RecordResolutionMiss(ctx context.Context, jid string) {
	d.logger.Debug("identity resolution miss", zap.String("jid", jid))
	d.bump(ctx, "resolution_misses")
}

// RecordSkippedControl notes a control message dropped before storage.
func (d *Diagnostics) RecordSkippedControl(ctx context.Context) {
	d.bump(ctx, "skipped_control_messages")
}

// CountEvent notes one processed event of the given kind.
func (d *Diagnostics) CountEvent(ctx context.Context, kind string) {
	d.bump(ctx, "events."+kind)
}

// Counter returns the current value of a counter, zero when never bumped.
func (d *Diagnostics) Counter(ctx context.Context, key string) (int64, error) {
	var v string
	err := d.db.QueryRowContext(ctx, `SELECT value FROM sync_state WHERE session_id = ? AND key = ?`,
		d.sessionID, key).Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(v, 10, 64)
}

func (d *Diagnostics) bump(ctx context.Context, key string) {
	now := time.Now().UnixMilli()
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO sync_state (session_id, key, value, updated_at)
		VALUES (?, ?, '1', ?)
		ON CONFLICT(session_id, key) DO UPDATE SET
			value = CAST(CAST(sync_state.value AS INTEGER) + 1 AS TEXT),
			updated_at = excluded.updated_at`,
		d.sessionID, key, now)
	if err != nil {
		d.logger.Warn("diagnostics counter failed", zap.String("key", key), zap.Error(err))
	}
}

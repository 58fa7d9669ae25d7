package creds

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/mtsalles/wastore/internal/store"
	"go.uber.org/zap"
)

// Decoder rehydrates a stored blob into a richer protocol record.
type Decoder func([]byte) (any, error)

// Store persists per-session authentication material as keyed blobs. Reads
// degrade to absent and writes are best-effort: the protocol engine must keep
// running through a persistence blip and will regenerate or re-request
// material, so nothing here is allowed to become fatal.
type Store struct {
	sessionID string
	db        *store.DB
	logger    *zap.Logger

	mu       sync.RWMutex
	decoders map[string]Decoder
}

// NewStore creates a credential store bound to one session.
func NewStore(sessionID string, db *store.DB, logger *zap.Logger) *Store {
	return &Store{
		sessionID: sessionID,
		db:        db,
		logger:    logger,
		decoders:  make(map[string]Decoder),
	}
}

// RegisterDecoder installs a per-category decode step applied on reads. New
// categories plug in without touching store internals.
func (s *Store) RegisterDecoder(category string, d Decoder) {
	s.mu.Lock()
	s.decoders[category] = d
	s.mu.Unlock()
}

// Get fans out one lookup per id. Missing ids are simply absent from the
// result, and so are ids whose read or decode failed (logged).
func (s *Store) Get(ctx context.Context, category string, ids []string) map[string]any {
	s.mu.RLock()
	dec := s.decoders[category]
	s.mu.RUnlock()

	out := make(map[string]any, len(ids))
	for _, id := range ids {
		data, err := s.db.GetCredential(ctx, s.sessionID, category, id)
		if err != nil {
			s.logger.Warn("credential read failed",
				zap.String("category", category), zap.String("id", id), zap.Error(err))
			continue
		}
		if data == nil {
			continue
		}
		if dec == nil {
			out[id] = data
			continue
		}
		v, err := dec(data)
		if err != nil {
			s.logger.Warn("credential decode failed",
				zap.String("category", category), zap.String("id", id), zap.Error(err))
			continue
		}
		out[id] = v
	}
	return out
}

// Mutations maps category to id to blob; a nil blob is a tombstone.
type Mutations map[string]map[string][]byte

// Set applies upserts and tombstone deletes. One failing mutation is logged
// and the rest of the batch continues.
func (s *Store) Set(ctx context.Context, m Mutations) {
	for category, byID := range m {
		for id, data := range byID {
			var err error
			if data == nil {
				err = s.db.DeleteCredential(ctx, s.sessionID, category, id)
			} else {
				err = s.db.PutCredential(ctx, s.sessionID, category, id, data)
			}
			if err != nil {
				s.logger.Warn("credential write failed",
					zap.String("category", category), zap.String("id", id), zap.Error(err))
			}
		}
	}
}

// LoadCreds reads the account's own credential blob, generating and
// persisting a fresh default set on first use.
func (s *Store) LoadCreds(ctx context.Context) (*Creds, error) {
	data, err := s.db.GetCredential(ctx, s.sessionID, OwnCredentials, "")
	if err != nil {
		return nil, fmt.Errorf("read creds: %w", err)
	}
	if data == nil {
		c := NewCreds()
		if err := s.SaveCreds(ctx, c); err != nil {
			return nil, err
		}
		s.logger.Info("generated fresh credentials", zap.String("session", s.sessionID))
		return c, nil
	}
	var c Creds
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode creds: %w", err)
	}
	return &c, nil
}

// SaveCreds writes the account's own credential blob back.
func (s *Store) SaveCreds(ctx context.Context, c *Creds) error {
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode creds: %w", err)
	}
	if err := s.db.PutCredential(ctx, s.sessionID, OwnCredentials, "", data); err != nil {
		return fmt.Errorf("write creds: %w", err)
	}
	return nil
}

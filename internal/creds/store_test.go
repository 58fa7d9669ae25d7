package creds

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/mtsalles/wastore/internal/store"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Migrate(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore("main", db, zap.NewNop())
}

func TestSetGetRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	s.Set(ctx, Mutations{"pre-key": {"1": []byte("alpha"), "2": []byte("beta")}})

	got := s.Get(ctx, "pre-key", []string{"1", "2", "3"})
	if len(got) != 2 {
		t.Fatalf("got %d entries, want 2", len(got))
	}
	if !bytes.Equal(got["1"].([]byte), []byte("alpha")) {
		t.Errorf("id 1 = %q, want alpha", got["1"])
	}
	if _, ok := got["3"]; ok {
		t.Error("missing id 3 should be absent, not present")
	}
}

func TestSetOverwrites(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	s.Set(ctx, Mutations{"pre-key": {"1": []byte("old")}})
	s.Set(ctx, Mutations{"pre-key": {"1": []byte("new")}})

	got := s.Get(ctx, "pre-key", []string{"1"})
	if !bytes.Equal(got["1"].([]byte), []byte("new")) {
		t.Errorf("id 1 = %q, want new", got["1"])
	}
}

func TestTombstoneDeletes(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	s.Set(ctx, Mutations{"session": {"a": []byte("x")}})
	s.Set(ctx, Mutations{"session": {"a": nil}})

	got := s.Get(ctx, "session", []string{"a"})
	if _, ok := got["a"]; ok {
		t.Error("tombstoned id still present")
	}

	// Deleting something that never existed is fine.
	s.Set(ctx, Mutations{"session": {"never": nil}})
}

func TestDecoderRehydratesOnRead(t *testing.T) {
	s := testStore(t)
	s.RegisterDecoder(CategoryAppStateSyncKey, DecodeAppStateSyncKey)
	ctx := context.Background()

	blob, err := proto.Marshal(&waE2E.AppStateSyncKeyData{KeyData: []byte("secret")})
	if err != nil {
		t.Fatal(err)
	}
	s.Set(ctx, Mutations{CategoryAppStateSyncKey: {"k1": blob}})

	got := s.Get(ctx, CategoryAppStateSyncKey, []string{"k1"})
	key, ok := got["k1"].(*waE2E.AppStateSyncKeyData)
	if !ok {
		t.Fatalf("id k1 = %T, want *waE2E.AppStateSyncKeyData", got["k1"])
	}
	if !bytes.Equal(key.GetKeyData(), []byte("secret")) {
		t.Errorf("key data = %q, want secret", key.GetKeyData())
	}
}

func TestDecodeFailureDegradesToAbsent(t *testing.T) {
	s := testStore(t)
	s.RegisterDecoder("broken", func([]byte) (any, error) {
		return nil, context.Canceled
	})
	ctx := context.Background()

	s.Set(ctx, Mutations{"broken": {"x": []byte("data")}})
	got := s.Get(ctx, "broken", []string{"x"})
	if _, ok := got["x"]; ok {
		t.Error("undecodable entry should be absent")
	}
}

func TestLoadCredsGeneratesOnce(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	first, err := s.LoadCreds(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if first.NoiseKey == nil || first.IdentityKey == nil || first.SignedPreKey == nil {
		t.Fatal("fresh credentials missing key material")
	}
	if first.RegistrationID == 0 {
		t.Error("registration id not assigned")
	}

	second, err := s.LoadCreds(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if second.RegistrationID != first.RegistrationID {
		t.Error("second load regenerated credentials instead of reading them back")
	}
	if *second.NoiseKey.Pub != *first.NoiseKey.Pub {
		t.Error("noise key changed across loads")
	}
}

func TestSaveCredsRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	c, err := s.LoadCreds(ctx)
	if err != nil {
		t.Fatal(err)
	}
	c.NextPreKeyID = 42
	if err := s.SaveCreds(ctx, c); err != nil {
		t.Fatal(err)
	}

	got, err := s.LoadCreds(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.NextPreKeyID != 42 {
		t.Errorf("next pre-key id = %d, want 42", got.NextPreKeyID)
	}
}

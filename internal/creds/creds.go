package creds

import (
	"crypto/rand"
	"encoding/binary"

	"go.mau.fi/util/random"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/util/keys"
	"google.golang.org/protobuf/proto"
)

// OwnCredentials is the category holding the account's own auth blob.
const OwnCredentials = "creds"

// CategoryAppStateSyncKey is the credential category whose blobs are
// rehydrated into protocol records on read.
const CategoryAppStateSyncKey = "app-state-sync-key"

// Creds is the account's own authentication material, persisted as one opaque
// blob. The protocol engine reads it at connection establishment and writes it
// back after key rotation.
type Creds struct {
	NoiseKey                *keys.KeyPair `json:"noiseKey"`
	IdentityKey             *keys.KeyPair `json:"signedIdentityKey"`
	SignedPreKey            *keys.PreKey  `json:"signedPreKey"`
	RegistrationID          uint32        `json:"registrationId"`
	AdvSecretKey            []byte        `json:"advSecretKey"`
	NextPreKeyID            uint32        `json:"nextPreKeyId"`
	FirstUnuploadedPreKeyID uint32        `json:"firstUnuploadedPreKeyId"`
}

// NewCreds generates a fresh default credential set for a session that has
// never persisted one.
func NewCreds() *Creds {
	identity := keys.NewKeyPair()
	return &Creds{
		NoiseKey:                keys.NewKeyPair(),
		IdentityKey:             identity,
		SignedPreKey:            identity.CreateSignedPreKey(1),
		RegistrationID:          generateRegistrationID(),
		AdvSecretKey:            random.Bytes(32),
		NextPreKeyID:            1,
		FirstUnuploadedPreKeyID: 1,
	}
}

func generateRegistrationID() uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return binary.BigEndian.Uint32(b[:])%16380 + 1
}

// DecodeAppStateSyncKey rehydrates a stored app-state sync key blob into its
// protocol record.
func DecodeAppStateSyncKey(data []byte) (any, error) {
	var key waE2E.AppStateSyncKeyData
	if err := proto.Unmarshal(data, &key); err != nil {
		return nil, err
	}
	return &key, nil
}

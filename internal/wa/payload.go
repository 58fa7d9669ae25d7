package wa

import (
	"go.mau.fi/whatsmeow/proto/waE2E"
	"google.golang.org/protobuf/encoding/protojson"
)

// MessageType returns the payload's top-level type discriminator: the JSON
// name of the lowest-numbered populated field, e.g. "conversation",
// "imageMessage" or "protocolMessage".
func MessageType(msg *waE2E.Message) string {
	if msg == nil {
		return ""
	}
	m := msg.ProtoReflect()
	fields := m.Descriptor().Fields()
	for i := 0; i < fields.Len(); i++ {
		if fd := fields.Get(i); m.Has(fd) {
			return fd.JSONName()
		}
	}
	return ""
}

// controlWrappers are discriminators whose protocol subtype decides whether
// the message is internal synchronization traffic.
var controlWrappers = map[string]bool{
	"protocolMessage":              true,
	"senderKeyDistributionMessage": true,
	"messageContextInfo":           true,
}

// skipSubtypes are the protocol-message subtypes that must never become
// stored conversation history.
var skipSubtypes = map[waE2E.ProtocolMessage_Type]bool{
	waE2E.ProtocolMessage_HISTORY_SYNC_NOTIFICATION:                  true,
	waE2E.ProtocolMessage_APP_STATE_SYNC_KEY_SHARE:                   true,
	waE2E.ProtocolMessage_INITIAL_SECURITY_NOTIFICATION_SETTING_SYNC: true,
	waE2E.ProtocolMessage_APP_STATE_FATAL_EXCEPTION_NOTIFICATION:     true,
}

// ShouldSkip reports whether the payload is an internal synchronization
// notification. Other protocol-message subtypes (revokes, ephemeral setting
// changes) still carry business-relevant signals and are persisted.
func ShouldSkip(msg *waE2E.Message) bool {
	if !controlWrappers[MessageType(msg)] {
		return false
	}
	return skipSubtypes[msg.GetProtocolMessage().GetType()]
}

// MarshalPayload serializes a payload for storage. A nil payload stores as
// NULL so a later re-delivery can fill it in.
func MarshalPayload(msg *waE2E.Message) ([]byte, error) {
	if msg == nil {
		return nil, nil
	}
	return protojson.Marshal(msg)
}

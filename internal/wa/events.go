package wa

import "go.mau.fi/whatsmeow/proto/waE2E"

// Event kinds emitted by the protocol engine, as published on the bus.
const (
	KindChatsSet       = "chats.set"
	KindChatsUpsert    = "chats.upsert"
	KindChatsUpdate    = "chats.update"
	KindContactsSet    = "contacts.set"
	KindContactsUpsert = "contacts.upsert"
	KindContactsUpdate = "contacts.update"
	KindMessagesSet    = "messages.set"
	KindMessagesUpsert = "messages.upsert"
	KindMessagesUpdate = "messages.update"
)

// MessageKey is the protocol-assigned identity of a message. RemoteJIDAlt
// carries the other addressing scheme for the same conversation when the
// server delivers both.
type MessageKey struct {
	RemoteJID    string
	RemoteJIDAlt string
	ID           string
	FromMe       bool
	Participant  string
	AgentID      string
}

// MessageEvent is one live or history message as delivered by the engine.
type MessageEvent struct {
	Key       MessageKey
	Payload   *waE2E.Message
	PushName  string
	Broadcast bool
	Status    string
	Timestamp int64
}

// ChatEvent is a full or partial chat snapshot. Optional fields are pointers
// so a partial update can be told apart from an explicit zero value. Update
// events may attach messages whose keys help resolve lid-addressed chat ids.
type ChatEvent struct {
	ID                    string
	ConversationTimestamp *int64
	UnreadCount           *int
	Name                  *string
	NotSpam               *bool
	Archived              *bool
	Pinned                *bool
	MuteEndTime           *int64
	Messages              []MessageEvent
}

// ContactEvent is a full or partial contact snapshot.
type ContactEvent struct {
	ID           string
	Name         *string
	Notify       *string
	VerifiedName *string
	ImgURL       *string
	Status       *string
}

// MessageUpdate is a point update for a message: status changes in practice,
// optionally with a re-delivered payload.
type MessageUpdate struct {
	Key     MessageKey
	Status  *string
	Payload *waE2E.Message
}

// ChatsSet is the bulk-replace batch; handled identically to ChatsUpsert.
type ChatsSet struct{ Chats []ChatEvent }

// ChatsUpsert is the incremental full-entity batch.
type ChatsUpsert struct{ Chats []ChatEvent }

// ChatsUpdate carries partial-field merges.
type ChatsUpdate struct{ Updates []ChatEvent }

// ContactsSet is the bulk-replace contact batch.
type ContactsSet struct{ Contacts []ContactEvent }

// ContactsUpsert is the incremental contact batch.
type ContactsUpsert struct{ Contacts []ContactEvent }

// ContactsUpdate carries partial contact merges.
type ContactsUpdate struct{ Updates []ContactEvent }

// MessagesSet is a history batch; IsLatest marks the newest chunk.
type MessagesSet struct {
	Messages []MessageEvent
	IsLatest bool
}

// MessagesUpsert is a live message batch; Type is the engine's notify/append
// marker and is not interpreted here.
type MessagesUpsert struct {
	Messages []MessageEvent
	Type     string
}

// MessagesUpdate carries per-message point updates.
type MessagesUpdate struct{ Updates []MessageUpdate }

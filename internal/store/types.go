package store

// Chat is one conversation row. Optional fields are pointers: nil means the
// originating event did not carry the field, and any stored value is kept.
type Chat struct {
	PkID                  int64
	ID                    string
	ConversationTimestamp *int64
	UnreadCount           *int
	Name                  *string
	NotSpam               *bool
	Archived              *bool
	Pinned                *bool
	MuteEndTime           *int64
	LastUpdated           int64
}

// Contact is one address-book row, keyed by canonical JID.
type Contact struct {
	ID           string
	Name         *string
	Notify       *string
	VerifiedName *string
	ImgURL       *string
	Status       *string
}

// Message is one stored message. Payload is the serialized protocol message;
// PkID is a surrogate ordering key and never part of the logical identity.
type Message struct {
	PkID             int64
	RemoteJID        string
	ID               string
	FromMe           bool
	AgentID          string
	ChatID           string
	PushName         string
	Broadcast        bool
	Payload          []byte
	MessageType      string
	MessageTimestamp int64
	Participant      string
	Status           string
}

// MessageCursor identifies a previously returned message by its logical
// identity within a conversation.
type MessageCursor struct {
	ID     string
	FromMe bool
}

// MessagePage is one chronological page of a conversation.
type MessagePage struct {
	Messages   []Message
	NextCursor *MessageCursor
	HasMore    bool
}

// ChatPage is one page of the chat list. NextCursor is an opaque pk_id token.
type ChatPage struct {
	Chats      []Chat
	NextCursor string
	HasMore    bool
}

package sync

import (
	"context"

	"github.com/mtsalles/wastore/internal/bus"
	"github.com/mtsalles/wastore/internal/store"
	"github.com/mtsalles/wastore/internal/wa"
	"go.uber.org/zap"
)

// Engine turns the protocol engine's event stream into store mutations:
// filtering, identity resolution, then idempotent upserts. Events are consumed
// one at a time in arrival order; within a batch each entity fails
// independently (logged and skipped), since the upstream is the source of
// truth and redelivers.
type Engine struct {
	sessionID string
	db        *store.DB
	bus       *bus.Bus
	diag      *Diagnostics
	logger    *zap.Logger
	cancel    context.CancelFunc
}

// NewEngine creates an ingest engine bound to one session.
func NewEngine(sessionID string, db *store.DB, b *bus.Bus, diag *Diagnostics, logger *zap.Logger) *Engine {
	return &Engine{
		sessionID: sessionID,
		db:        db,
		bus:       b,
		diag:      diag,
		logger:    logger,
	}
}

// Start subscribes to the protocol event stream on the bus.
func (e *Engine) Start(ctx context.Context) {
	ctx, e.cancel = context.WithCancel(ctx)
	ch, unsub := e.bus.Subscribe("", 256)

	go func() {
		defer unsub()
		for {
			select {
			case evt := <-ch:
				e.handleEvent(ctx, evt)
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the engine.
func (e *Engine) Stop() {
	if e.cancel != nil {
		e.cancel()
	}
}

func (e *Engine) handleEvent(ctx context.Context, evt bus.Event) {
	switch evt.Kind {
	case wa.KindChatsSet:
		if p, ok := evt.Payload.(wa.ChatsSet); ok {
			e.upsertChats(ctx, p.Chats)
		}
	case wa.KindChatsUpsert:
		if p, ok := evt.Payload.(wa.ChatsUpsert); ok {
			e.upsertChats(ctx, p.Chats)
		}
	case wa.KindChatsUpdate:
		if p, ok := evt.Payload.(wa.ChatsUpdate); ok {
			e.updateChats(ctx, p.Updates)
		}
	case wa.KindContactsSet:
		if p, ok := evt.Payload.(wa.ContactsSet); ok {
			e.upsertContacts(ctx, p.Contacts)
		}
	case wa.KindContactsUpsert:
		if p, ok := evt.Payload.(wa.ContactsUpsert); ok {
			e.upsertContacts(ctx, p.Contacts)
		}
	case wa.KindContactsUpdate:
		if p, ok := evt.Payload.(wa.ContactsUpdate); ok {
			e.updateContacts(ctx, p.Updates)
		}
	case wa.KindMessagesSet:
		if p, ok := evt.Payload.(wa.MessagesSet); ok {
			e.upsertMessages(ctx, p.Messages)
		}
	case wa.KindMessagesUpsert:
		if p, ok := evt.Payload.(wa.MessagesUpsert); ok {
			e.upsertMessages(ctx, p.Messages)
		}
	case wa.KindMessagesUpdate:
		if p, ok := evt.Payload.(wa.MessagesUpdate); ok {
			e.updateMessages(ctx, p.Updates)
		}
	default:
		return
	}
	e.diag.CountEvent(ctx, evt.Kind)
}

func (e *Engine) upsertChats(ctx context.Context, chats []wa.ChatEvent) {
	for i := range chats {
		row := chatRow(&chats[i])
		if err := e.db.UpsertChat(ctx, e.sessionID, row); err != nil {
			e.logger.Error("upsert chat failed", zap.String("chat", row.ID), zap.Error(err))
		}
	}
}

func (e *Engine) updateChats(ctx context.Context, updates []wa.ChatEvent) {
	for i := range updates {
		u := &updates[i]
		row := chatRow(u)

		// Key the chat row by the phone-number scheme whenever derivable:
		// the first attached message key carries both addressing forms.
		var fallbacks []string
		if len(u.Messages) > 0 {
			key := u.Messages[0].Key
			fallbacks = []string{key.RemoteJID, key.RemoteJIDAlt}
		}
		id, ok := wa.ResolveJID(u.ID, fallbacks...)
		if !ok {
			e.diag.RecordResolutionMiss(ctx, u.ID)
		}
		row.ID = id

		if err := e.db.UpdateChat(ctx, e.sessionID, row); err != nil {
			e.logger.Error("update chat failed", zap.String("chat", row.ID), zap.Error(err))
		}
	}
}

func (e *Engine) upsertContacts(ctx context.Context, contacts []wa.ContactEvent) {
	for i := range contacts {
		row := contactRow(&contacts[i])
		if err := e.db.UpsertContact(ctx, e.sessionID, row); err != nil {
			e.logger.Error("upsert contact failed", zap.String("contact", row.ID), zap.Error(err))
		}
	}
}

func (e *Engine) updateContacts(ctx context.Context, updates []wa.ContactEvent) {
	for i := range updates {
		row := contactRow(&updates[i])
		if err := e.db.UpdateContact(ctx, e.sessionID, row); err != nil {
			e.logger.Error("update contact failed", zap.String("contact", row.ID), zap.Error(err))
		}
	}
}

func (e *Engine) upsertMessages(ctx context.Context, msgs []wa.MessageEvent) {
	for i := range msgs {
		m := &msgs[i]
		if wa.ShouldSkip(m.Payload) {
			e.logger.Debug("skipping control message",
				zap.String("msg", m.Key.ID),
				zap.String("subtype", m.Payload.GetProtocolMessage().GetType().String()))
			e.diag.RecordSkippedControl(ctx)
			continue
		}

		remoteJID := wa.NormalizeJID(m.Key.RemoteJID)
		resolved, ok := wa.ResolveJID(remoteJID, m.Key.RemoteJIDAlt)
		if !ok {
			e.diag.RecordResolutionMiss(ctx, remoteJID)
		}

		payload, err := wa.MarshalPayload(m.Payload)
		if err != nil {
			e.logger.Warn("unserializable message payload", zap.String("msg", m.Key.ID), zap.Error(err))
			continue
		}

		row := &store.Message{
			RemoteJID:        resolved,
			ID:               m.Key.ID,
			FromMe:           m.Key.FromMe,
			AgentID:          m.Key.AgentID,
			ChatID:           m.Key.RemoteJID,
			PushName:         m.PushName,
			Broadcast:        m.Broadcast,
			Payload:          payload,
			MessageType:      wa.MessageType(m.Payload),
			MessageTimestamp: m.Timestamp,
			Participant:      m.Key.Participant,
			Status:           m.Status,
		}
		if err := e.db.UpsertMessage(ctx, e.sessionID, row); err != nil {
			e.logger.Error("upsert message failed",
				zap.String("chat", row.RemoteJID), zap.String("msg", row.ID), zap.Error(err))
		}
	}
}

func (e *Engine) updateMessages(ctx context.Context, updates []wa.MessageUpdate) {
	for i := range updates {
		u := &updates[i]
		remoteJID := wa.NormalizeJID(u.Key.RemoteJID)
		payload, err := wa.MarshalPayload(u.Payload)
		if err != nil {
			e.logger.Warn("unserializable message payload", zap.String("msg", u.Key.ID), zap.Error(err))
			continue
		}
		if err := e.db.UpdateMessage(ctx, e.sessionID, remoteJID, u.Key.ID, u.Status, payload); err != nil {
			e.logger.Error("update message failed",
				zap.String("chat", remoteJID), zap.String("msg", u.Key.ID), zap.Error(err))
		}
	}
}

func chatRow(c *wa.ChatEvent) *store.Chat {
	return &store.Chat{
		ID:                    c.ID,
		ConversationTimestamp: c.ConversationTimestamp,
		UnreadCount:           c.UnreadCount,
		Name:                  c.Name,
		NotSpam:               c.NotSpam,
		Archived:              c.Archived,
		Pinned:                c.Pinned,
		MuteEndTime:           c.MuteEndTime,
	}
}

func contactRow(c *wa.ContactEvent) *store.Contact {
	return &store.Contact{
		ID:           c.ID,
		Name:         c.Name,
		Notify:       c.Notify,
		VerifiedName: c.VerifiedName,
		ImgURL:       c.ImgURL,
		Status:       c.Status,
	}
}

package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"ai-supportdesk-be/internal/entity"
	"ai-supportdesk-be/internal/repository/contract"
	"ai-supportdesk-be/internal/repository/specification"
	"ai-supportdesk-be/internal/repository/unitofwork"
	"ai-supportdesk-be/internal/websocket"
	"ai-supportdesk-be/pkg/events"

	"github.com/google/uuid"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

// memStore is the shared backing state for the in-memory repositories, so a
// test's factory hands every unit of work the same data.
type memStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*entity.ContactSession
	convos   map[uuid.UUID]*entity.Conversation
	messages map[uuid.UUID][]*entity.ThreadMessage
	entries  map[uuid.UUID]*entity.KnowledgeEntry
	chunks   map[uuid.UUID][]*entity.KnowledgeChunk
	creds    map[uuid.UUID]*entity.PluginCredential

	searchResults []*contract.ScoredKnowledgeChunk
	searchedNS    []string
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[uuid.UUID]*entity.ContactSession),
		convos:   make(map[uuid.UUID]*entity.Conversation),
		messages: make(map[uuid.UUID][]*entity.ThreadMessage),
		entries:  make(map[uuid.UUID]*entity.KnowledgeEntry),
		chunks:   make(map[uuid.UUID][]*entity.KnowledgeChunk),
		creds:    make(map[uuid.UUID]*entity.PluginCredential),
	}
}

type memUnitOfWork struct {
	store *memStore
}

func (u *memUnitOfWork) Begin(ctx context.Context) error { return nil }
func (u *memUnitOfWork) Commit() error                   { return nil }
func (u *memUnitOfWork) Rollback() error                 { return nil }

func (u *memUnitOfWork) ContactSessionRepository() contract.ContactSessionRepository {
	return &memSessionRepo{store: u.store}
}
func (u *memUnitOfWork) ConversationRepository() contract.ConversationRepository {
	return &memConversationRepo{store: u.store}
}
func (u *memUnitOfWork) ThreadMessageRepository() contract.ThreadMessageRepository {
	return &memThreadRepo{store: u.store}
}
func (u *memUnitOfWork) KnowledgeEntryRepository() contract.KnowledgeEntryRepository {
	return &memEntryRepo{store: u.store}
}
func (u *memUnitOfWork) KnowledgeChunkRepository() contract.KnowledgeChunkRepository {
	return &memChunkRepo{store: u.store}
}
func (u *memUnitOfWork) PluginCredentialRepository() contract.PluginCredentialRepository {
	return &memPluginRepo{store: u.store}
}

type memFactory struct {
	store *memStore
}

func newMemFactory() *memFactory {
	return &memFactory{store: newMemStore()}
}

func (f *memFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memUnitOfWork{store: f.store}
}

// sessionMatches interprets the specification types the session service uses.
func sessionMatches(session *entity.ContactSession, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if session.Id != s.ID {
				return false
			}
		}
	}
	return true
}

type memSessionRepo struct {
	store *memStore
}

func (r *memSessionRepo) Create(ctx context.Context, session *entity.ContactSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if session.Id == uuid.Nil {
		session.Id = uuid.New()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now()
	}
	copied := *session
	r.store.sessions[session.Id] = &copied
	return nil
}

func (r *memSessionRepo) Update(ctx context.Context, session *entity.ContactSession) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *session
	r.store.sessions[session.Id] = &copied
	return nil
}

func (r *memSessionRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ContactSession, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, session := range r.store.sessions {
		if sessionMatches(session, specs) {
			copied := *session
			return &copied, nil
		}
	}
	return nil, nil
}

func conversationMatches(conversation *entity.Conversation, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if conversation.Id != s.ID {
				return false
			}
		case specification.ByOrganizationID:
			if conversation.OrganizationId != s.OrganizationID {
				return false
			}
		case specification.ByContactSessionID:
			if conversation.ContactSessionId != s.ContactSessionID {
				return false
			}
		case specification.ByThreadID:
			if conversation.ThreadId != s.ThreadID {
				return false
			}
		case specification.ByStatus:
			if conversation.Status != s.Status {
				return false
			}
		case specification.CreatedBefore:
			if !conversation.CreatedAt.Before(s.CreatedAt) {
				return false
			}
		}
	}
	return true
}

type memConversationRepo struct {
	store *memStore
}

func (r *memConversationRepo) Create(ctx context.Context, conversation *entity.Conversation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if conversation.Id == uuid.Nil {
		conversation.Id = uuid.New()
	}
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = time.Now()
	}
	copied := *conversation
	r.store.convos[conversation.Id] = &copied
	return nil
}

func (r *memConversationRepo) Update(ctx context.Context, conversation *entity.Conversation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *conversation
	r.store.convos[conversation.Id] = &copied
	return nil
}

func (r *memConversationRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Conversation, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *memConversationRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Conversation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.Conversation
	for _, conversation := range r.store.convos {
		if conversationMatches(conversation, specs) {
			copied := *conversation
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Id.String() > out[j].Id.String()
	})

	for _, spec := range specs {
		if limit, ok := spec.(specification.Limit); ok && len(out) > limit.N {
			out = out[:limit.N]
		}
	}
	return out, nil
}

func (r *memConversationRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

type memThreadRepo struct {
	store *memStore
}

func (r *memThreadRepo) Append(ctx context.Context, message *entity.ThreadMessage) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if message.Id == uuid.Nil {
		message.Id = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	message.Seq = int64(len(r.store.messages[message.ThreadId])) + 1
	copied := *message
	r.store.messages[message.ThreadId] = append(r.store.messages[message.ThreadId], &copied)
	return nil
}

func (r *memThreadRepo) ListAfter(ctx context.Context, threadId uuid.UUID, afterSeq int64, limit int) ([]*entity.ThreadMessage, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.ThreadMessage
	for _, msg := range r.store.messages[threadId] {
		if msg.Seq > afterSeq {
			copied := *msg
			out = append(out, &copied)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *memThreadRepo) MaxSeq(ctx context.Context, threadId uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return int64(len(r.store.messages[threadId])), nil
}

func entryMatches(entry *entity.KnowledgeEntry, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if entry.Id != s.ID {
				return false
			}
		case specification.ByNamespace:
			if entry.Namespace != s.Namespace {
				return false
			}
		case specification.ByContentHash:
			if entry.ContentHash != s.Hash {
				return false
			}
		case specification.ByCategory:
			category, _ := entry.Metadata["category"].(string)
			if category != s.Category {
				return false
			}
		case specification.CreatedBefore:
			if !entry.CreatedAt.Before(s.CreatedAt) {
				return false
			}
		}
	}
	return true
}

type memEntryRepo struct {
	store *memStore
}

func (r *memEntryRepo) Create(ctx context.Context, entry *entity.KnowledgeEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if entry.Id == uuid.Nil {
		entry.Id = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	copied := *entry
	r.store.entries[entry.Id] = &copied
	return nil
}

func (r *memEntryRepo) Update(ctx context.Context, entry *entity.KnowledgeEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *entry
	r.store.entries[entry.Id] = &copied
	return nil
}

func (r *memEntryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.entries, id)
	return nil
}

func (r *memEntryRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.KnowledgeEntry, error) {
	all, err := r.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (r *memEntryRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.KnowledgeEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var out []*entity.KnowledgeEntry
	for _, entry := range r.store.entries {
		if entryMatches(entry, specs) {
			copied := *entry
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Id.String() > out[j].Id.String()
	})

	for _, spec := range specs {
		if limit, ok := spec.(specification.Limit); ok && len(out) > limit.N {
			out = out[:limit.N]
		}
	}
	return out, nil
}

func (r *memEntryRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, err := r.FindAll(ctx, specs...)
	return int64(len(all)), err
}

type memChunkRepo struct {
	store *memStore
}

func (r *memChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.KnowledgeChunk) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, chunk := range chunks {
		if chunk.Id == uuid.Nil {
			chunk.Id = uuid.New()
		}
		copied := *chunk
		r.store.chunks[chunk.EntryId] = append(r.store.chunks[chunk.EntryId], &copied)
	}
	return nil
}

func (r *memChunkRepo) DeleteByEntryId(ctx context.Context, entryId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.chunks, entryId)
	return nil
}

func (r *memChunkRepo) SearchSimilar(ctx context.Context, namespace string, embedding []float32, limit int) ([]*contract.ScoredKnowledgeChunk, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.searchedNS = append(r.store.searchedNS, namespace)

	var out []*contract.ScoredKnowledgeChunk
	for _, hit := range r.store.searchResults {
		if hit.Chunk.Namespace == namespace {
			out = append(out, hit)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

type memPluginRepo struct {
	store *memStore
}

func (r *memPluginRepo) Create(ctx context.Context, credential *entity.PluginCredential) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if credential.Id == uuid.Nil {
		credential.Id = uuid.New()
	}
	copied := *credential
	r.store.creds[credential.Id] = &copied
	return nil
}

func (r *memPluginRepo) Update(ctx context.Context, credential *entity.PluginCredential) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *credential
	r.store.creds[credential.Id] = &copied
	return nil
}

func (r *memPluginRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.creds, id)
	return nil
}

func (r *memPluginRepo) FindByOrgAndService(ctx context.Context, organizationId, service string) (*entity.PluginCredential, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, credential := range r.store.creds {
		if credential.OrganizationId == organizationId && credential.Service == service {
			copied := *credential
			return &copied, nil
		}
	}
	return nil, nil
}

// recordingHub captures websocket envelopes per topic.
type recordingHub struct {
	mu        sync.Mutex
	envelopes map[string][]websocket.Envelope
}

func newRecordingHub() *recordingHub {
	return &recordingHub{envelopes: make(map[string][]websocket.Envelope)}
}

func (h *recordingHub) Publish(topic string, envelope websocket.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.envelopes[topic] = append(h.envelopes[topic], envelope)
}

// recordingPublisher captures bus events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

// recordingMailer captures escalation alert emails.
type recordingMailer struct {
	mu     sync.Mutex
	alerts []string
}

func (m *recordingMailer) SendEscalationAlert(toEmail, conversationId, preview string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alerts = append(m.alerts, conversationId)
	return nil
}

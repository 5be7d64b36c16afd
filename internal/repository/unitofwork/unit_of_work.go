package unitofwork

import (
	"context"

	"ai-supportdesk-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	ContactSessionRepository() contract.ContactSessionRepository
	ConversationRepository() contract.ConversationRepository
	ThreadMessageRepository() contract.ThreadMessageRepository

	KnowledgeEntryRepository() contract.KnowledgeEntryRepository
	KnowledgeChunkRepository() contract.KnowledgeChunkRepository
	PluginCredentialRepository() contract.PluginCredentialRepository
}

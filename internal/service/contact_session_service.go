package service

import (
	"context"
	"time"

	"ai-supportdesk-be/internal/dto"
	"ai-supportdesk-be/internal/entity"
	"ai-supportdesk-be/internal/pkg/apperror"
	"ai-supportdesk-be/internal/pkg/logger"
	"ai-supportdesk-be/internal/repository/memory"
	"ai-supportdesk-be/internal/repository/specification"
	"ai-supportdesk-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// IContactSessionService manages visitor contact sessions and their sliding
// expiry.
type IContactSessionService interface {
	Create(ctx context.Context, request *dto.CreateContactSessionRequest) (*dto.CreateContactSessionResponse, error)

	// ValidateAndRefresh returns the session or fails with NOT_FOUND /
	// SESSION_EXPIRED. A session close to expiry gets its lifetime
	// extended as a side effect.
	ValidateAndRefresh(ctx context.Context, sessionId uuid.UUID) (*entity.ContactSession, error)
}

type contactSessionService struct {
	uowFactory       unitofwork.RepositoryFactory
	cache            *memory.SessionCache
	logger           logger.ILogger
	duration         time.Duration
	refreshThreshold time.Duration
	now              func() time.Time
}

func NewContactSessionService(
	uowFactory unitofwork.RepositoryFactory,
	cache *memory.SessionCache,
	log logger.ILogger,
	duration time.Duration,
	refreshThreshold time.Duration,
) IContactSessionService {
	return &contactSessionService{
		uowFactory:       uowFactory,
		cache:            cache,
		logger:           log,
		duration:         duration,
		refreshThreshold: refreshThreshold,
		now:              time.Now,
	}
}

func (s *contactSessionService) Create(ctx context.Context, request *dto.CreateContactSessionRequest) (*dto.CreateContactSessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	session := &entity.ContactSession{
		OrganizationId: request.OrganizationId,
		Name:           request.Name,
		Email:          request.Email,
		Metadata:       request.Metadata,
		ExpiresAt:      s.now().Add(s.duration),
	}
	if err := uow.ContactSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	s.cache.Save(session)
	s.logger.Info("contact_session", "session created", map[string]interface{}{
		"session_id":      session.Id.String(),
		"organization_id": session.OrganizationId,
	})

	return &dto.CreateContactSessionResponse{
		Id:        session.Id,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (s *contactSessionService) ValidateAndRefresh(ctx context.Context, sessionId uuid.UUID) (*entity.ContactSession, error) {
	now := s.now()

	// Cache hit still gets the wall-clock expiry check; cached entries can
	// outlive the session they hold.
	if cached, found := s.cache.Get(sessionId.String()); found {
		if cached.Expired(now) {
			s.cache.Delete(sessionId.String())
			return nil, apperror.SessionExpired("Contact session expired")
		}
		if cached.ExpiresAt.Sub(now) >= s.refreshThreshold {
			return cached, nil
		}
		// Needs a refresh; fall through to the DB path.
		s.cache.Delete(sessionId.String())
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := uow.ContactSessionRepository().FindOne(ctx, specification.ByID{ID: sessionId})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperror.NotFound("Contact session not found")
	}
	if session.Expired(now) {
		return nil, apperror.SessionExpired("Contact session expired")
	}

	if session.ExpiresAt.Sub(now) < s.refreshThreshold {
		if err := s.refresh(ctx, session, now); err != nil {
			return nil, err
		}
	}

	s.cache.Save(session)
	return session, nil
}

// refresh extends the session inside its own transaction. Concurrent
// refreshes both move ExpiresAt forward off the wall clock, so last writer
// winning is harmless.
func (s *contactSessionService) refresh(ctx context.Context, session *entity.ContactSession, now time.Time) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	session.ExpiresAt = now.Add(s.duration)
	if err := uow.ContactSessionRepository().Update(ctx, session); err != nil {
		uow.Rollback()
		return err
	}
	if err := uow.Commit(); err != nil {
		return err
	}

	s.logger.Debug("contact_session", "session refreshed", map[string]interface{}{
		"session_id": session.Id.String(),
		"expires_at": session.ExpiresAt,
	})
	return nil
}

package waitlist

//go:generate mockgen -source=service.go -destination=mock_service.go -package=waitlist

import (
	"context"

	"github.com/akeren/go-waitlist/internal/log"
	apperrors "github.com/akeren/go-waitlist/pkg/errors"
	"github.com/akeren/go-waitlist/pkg/flash"
)

const (
	opListAll       = "list_all"
	opInsert        = "insert"
	opDeleteByEmail = "delete_by_email"
)

type WaitlistService interface {
	// IndexContext lists every entry. A store failure yields an empty list with an error flash.
	IndexContext(ctx context.Context, notice *flash.Notice) ViewContext

	// ErrorContext lists every entry alongside an error flash carrying message.
	ErrorContext(ctx context.Context, message string) ViewContext

	// AddEntry validates and stores a signup.
	AddEntry(ctx context.Context, req *CreateWaitlistEntryRequest) error

	// DeleteEntry removes the entry with email and reports how many rows went away.
	DeleteEntry(ctx context.Context, email string) (int64, error)
}

type waitlistService struct {
	logger     *log.Logger
	repository WaitlistRepository
	metrics    *Metrics
}

func NewWaitlistService(logger *log.Logger, repository WaitlistRepository, metrics *Metrics) WaitlistService {
	return &waitlistService{logger: logger, repository: repository, metrics: metrics}
}

func (s *waitlistService) IndexContext(ctx context.Context, notice *flash.Notice) ViewContext {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	entries, err := s.repository.ListAll(ctx)
	if err != nil {
		logger.Error("Failed to list waitlist entries", "operation", opListAll, "error", err)
		s.metrics.storeError(opListAll)
		return ErrorViewContext(MsgDatabaseUnavailable, nil)
	}

	return NewViewContext(notice, entries)
}

func (s *waitlistService) ErrorContext(ctx context.Context, message string) ViewContext {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	entries, err := s.repository.ListAll(ctx)
	if err != nil {
		logger.Error("Failed to list waitlist entries", "operation", opListAll, "error", err)
		s.metrics.storeError(opListAll)
		return ErrorViewContext(MsgDatabaseUnavailable, nil)
	}

	return ErrorViewContext(message, entries)
}

func (s *waitlistService) AddEntry(ctx context.Context, req *CreateWaitlistEntryRequest) error {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		logger.Error("AddEntry received empty request")
		return apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	entry := ToWaitlistEntryModel(req)
	if entry.Email == "" {
		logger.Warn("AddEntry rejected entry without email")
		return apperrors.NewInvalidRequestError(MsgEmailRequired, nil)
	}

	if _, err := s.repository.Insert(ctx, entry); err != nil {
		logger.Error("Failed to insert waitlist entry",
			"operation", opInsert,
			"email", entry.Email,
			"error_type", apperrors.GetErrorType(err),
			"error", err,
		)
		s.metrics.storeError(opInsert)
		return err
	}

	s.metrics.entryCreated()
	logger.Info("Waitlist entry added", "email", entry.Email)
	return nil
}

func (s *waitlistService) DeleteEntry(ctx context.Context, email string) (int64, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	// The key is matched exactly as stored.
	rows, err := s.repository.DeleteByEmail(ctx, email)
	if err != nil {
		logger.Error("Failed to delete waitlist entry", "operation", opDeleteByEmail, "email", email, "error", err)
		s.metrics.storeError(opDeleteByEmail)
		return 0, err
	}

	s.metrics.entriesDeleted(rows)
	logger.Info("Waitlist entry deleted", "email", email, "rows", rows)
	return rows, nil
}

package waitlist

//go:generate mockgen -source=repository.go -destination=mock_repository.go -package=waitlist

import (
	"context"
	"errors"

	"github.com/akeren/go-waitlist/internal/models"
	apperrors "github.com/akeren/go-waitlist/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

var tracer = otel.Tracer("github.com/akeren/go-waitlist/domain/waitlist")

type WaitlistRepository interface {
	// ListAll returns every entry ordered by last name, descending.
	ListAll(ctx context.Context) ([]models.WaitlistEntry, error)
	// Insert stores a new entry and returns the number of rows written.
	Insert(ctx context.Context, entry *models.WaitlistEntry) (int64, error)
	// DeleteByEmail removes the entry with the given email. Zero rows is not an error.
	DeleteByEmail(ctx context.Context, email string) (int64, error)
}

type waitlistRepository struct {
	db *gorm.DB
}

func NewWaitlistRepository(db *gorm.DB) WaitlistRepository {
	return &waitlistRepository{db: db}
}

func (wr *waitlistRepository) ListAll(ctx context.Context) ([]models.WaitlistEntry, error) {
	ctx, span := tracer.Start(ctx, "waitlist.repository.ListAll")
	defer span.End()

	entries := make([]models.WaitlistEntry, 0)

	// Email breaks ties so equal last names render in a stable order.
	if err := wr.db.WithContext(ctx).Order("last_name DESC, email ASC").Find(&entries).Error; err != nil {
		recordSpanError(span, err)
		return nil, apperrors.NewDatabaseError("unable to fetch waitlist entries", err)
	}

	span.SetAttributes(attribute.Int("waitlist.entries", len(entries)))
	return entries, nil
}

func (wr *waitlistRepository) Insert(ctx context.Context, entry *models.WaitlistEntry) (int64, error) {
	ctx, span := tracer.Start(ctx, "waitlist.repository.Insert")
	defer span.End()

	if entry == nil {
		return 0, apperrors.NewInvalidRequestError("entry cannot be nil", nil)
	}

	result := wr.db.WithContext(ctx).Create(entry)
	if result.Error != nil {
		recordSpanError(span, result.Error)
		if isDuplicateKey(result.Error) {
			return 0, apperrors.NewConflictError("waitlist entry with this email already exists", result.Error)
		}
		return 0, apperrors.NewDatabaseError("unable to create waitlist entry", result.Error)
	}

	return result.RowsAffected, nil
}

func (wr *waitlistRepository) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	ctx, span := tracer.Start(ctx, "waitlist.repository.DeleteByEmail")
	defer span.End()

	result := wr.db.WithContext(ctx).Where("email = ?", email).Delete(&models.WaitlistEntry{})
	if result.Error != nil {
		recordSpanError(span, result.Error)
		return 0, apperrors.NewDatabaseError("unable to delete waitlist entry", result.Error)
	}

	span.SetAttributes(attribute.Int64("waitlist.rows_affected", result.RowsAffected))
	return result.RowsAffected, nil
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func isDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || apperrors.IsDuplicateKeyError(err)
}

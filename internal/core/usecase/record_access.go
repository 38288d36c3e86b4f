package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kirillkom/training-portal/internal/core/domain"
	"github.com/kirillkom/training-portal/internal/core/ports"
)

type RecordAccessUseCase struct {
	store     ports.AccessLogStore
	publisher ports.AccessEventPublisher
	observer  Observer
	logger    *slog.Logger
	now       func() time.Time
}

func NewRecordAccessUseCase(
	store ports.AccessLogStore,
	publisher ports.AccessEventPublisher,
	observer Observer,
	logger *slog.Logger,
) *RecordAccessUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordAccessUseCase{
		store:     store,
		publisher: publisher,
		observer:  observerOrNop(observer),
		logger:    logger,
		now:       time.Now,
	}
}

// Record appends one row when both name and email are present.
// A missing identity is a user-facing validation result, not an error.
func (uc *RecordAccessUseCase) Record(ctx context.Context, name, email, material string) (domain.RecordResult, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		uc.observer.ObserveAccessRecord("invalid")
		return domain.RecordResult{OK: false, Message: domain.MessageMissingIdentity}, nil
	}

	record := domain.AccessRecord{Name: name, Email: email, Material: material}
	if err := uc.store.Append(ctx, record); err != nil {
		uc.observer.ObserveAccessRecord("error")
		return domain.RecordResult{}, fmt.Errorf("append access record: %w", err)
	}
	uc.observer.ObserveAccessRecord("recorded")

	uc.logger.Info("access_recorded",
		"material", material,
		"email", maskEmail(email),
	)

	if uc.publisher != nil {
		event := domain.AccessRecorded{AccessRecord: record, RecordedAt: uc.now().UTC()}
		if err := uc.publisher.PublishAccessRecorded(ctx, event); err != nil {
			uc.logger.Warn("access_event_publish_failed", "material", material, "error", err)
		}
	}

	return domain.RecordResult{OK: true, Message: domain.AccessRecordedMessage(name)}, nil
}

func maskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return "***"
	}
	_, size := utf8.DecodeRuneInString(email)
	return email[:size] + "***" + email[at:]
}

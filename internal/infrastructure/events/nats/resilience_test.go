package nats

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/training-portal/internal/core/domain"
)

func TestClassifyConnectionLossIsRetryable(t *testing.T) {
	class := classifyNATSError(fmt.Errorf("nats publish: %w", nats.ErrConnectionClosed))
	if !class.Retryable || !class.RecordFailure {
		t.Fatalf("expected retryable failure, got %+v", class)
	}
}

func TestClassifyCanceledIsNotRecorded(t *testing.T) {
	class := classifyNATSError(context.Canceled)
	if class.Retryable || class.RecordFailure {
		t.Fatalf("expected cancellation ignored, got %+v", class)
	}
}

func TestWrapTemporaryOnlyForRetryable(t *testing.T) {
	if err := wrapTemporaryIfNeeded(nats.ErrNoServers); !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary wrap, got %v", err)
	}
	permanent := errors.New("bad subject")
	if err := wrapTemporaryIfNeeded(permanent); domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("permanent error must not be temporary: %v", err)
	}
}

func TestNoopPublisherAcceptsEvents(t *testing.T) {
	if err := (Noop{}).PublishAccessRecorded(context.Background(), domain.AccessRecorded{}); err != nil {
		t.Fatalf("Noop publish error = %v", err)
	}
}

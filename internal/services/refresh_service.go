package services

import (
	"context"
	"fmt"
	"io"
	"strings"

	"flousi/internal/amqp"
	"flousi/internal/core"
	"flousi/internal/log"
)

// Invalidator drops cached analytics of a user.
type Invalidator interface {
	Invalidate(userID string) int
}

// RefreshResult reports what a data change triggered.
type RefreshResult struct {
	Invalidated int  `json:"invalidated"`
	Published   bool `json:"published"`
}

// RefreshService reacts to upstream data changes: it drops the user's cached
// breakdowns at once and announces the change so the worker can snapshot.
type RefreshService struct {
	invalidator Invalidator
	publisher   amqp.Publisher
	logger      *log.Logger
}

// NewRefreshService builds the service. publisher may be nil when messaging
// is not configured.
func NewRefreshService(invalidator Invalidator, publisher amqp.Publisher, logger *log.Logger) *RefreshService {
	if logger == nil {
		logger = log.Discard()
	}
	return &RefreshService{
		invalidator: invalidator,
		publisher:   publisher,
		logger:      logger.WithComponent(log.ComponentAnalytics),
	}
}

// DataChanged invalidates and publishes. The change is local-first: a
// publish failure is logged and reported in the result, never returned.
func (s *RefreshService) DataChanged(ctx context.Context, userID string, kind core.TransactionKind) (RefreshResult, error) {
	if strings.TrimSpace(userID) == "" {
		return RefreshResult{}, core.ErrEmptyUserID
	}
	if kind != "" {
		if err := kind.Validate(); err != nil {
			return RefreshResult{}, err
		}
	}

	res := RefreshResult{Invalidated: s.invalidator.Invalidate(userID)}
	s.logger.InfoContext(ctx, "Invalidated cached analytics",
		log.FieldUserID, userID,
		log.FieldOperation, log.OpInvalidate,
		"entries", res.Invalidated)

	if s.publisher == nil {
		s.logger.WarnContext(ctx, "AMQP client not available, skipping data changed message")
		return res, nil
	}
	if err := s.publisher.PublishDataChanged(ctx, amqp.NewDataChangedMessage(userID, kind, "")); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish data changed message",
			log.FieldUserID, userID,
			log.FieldOperation, log.OpPublish,
			log.FieldError, err)
		return res, nil
	}
	res.Published = true
	return res, nil
}

// Close releases the publisher if it holds a connection.
func (s *RefreshService) Close() error {
	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}

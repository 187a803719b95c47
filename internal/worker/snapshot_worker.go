package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"flousi/internal/amqp"
	"flousi/internal/analytics"
	"flousi/internal/core"
	"flousi/internal/log"
	"flousi/internal/sheets"
)

var (
	allKinds   = []core.TransactionKind{core.Expense, core.Income}
	allPeriods = []core.Period{core.Week, core.Month, core.Year}
)

// SnapshotWorker recomputes users' reports and writes them out as snapshots,
// either on a DataChanged message or on a periodic sweep of every user.
type SnapshotWorker struct {
	service *analytics.Service
	writer  sheets.SnapshotWriter
	users   sheets.UserLister
	logger  *log.Logger
	now     func() time.Time
}

func NewSnapshotWorker(service *analytics.Service, writer sheets.SnapshotWriter, users sheets.UserLister, logger *log.Logger) *SnapshotWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &SnapshotWorker{
		service: service,
		writer:  writer,
		users:   users,
		logger:  logger.WithComponent(log.ComponentWorker),
		now:     time.Now,
	}
}

// HandleDataChanged drops the user's cached breakdowns and snapshots the
// affected reports. Empty kind or period in the message means all of them.
func (w *SnapshotWorker) HandleDataChanged(ctx context.Context, msg *amqp.DataChangedMessage) error {
	w.logger.InfoContext(ctx, "Processing data changed message",
		log.FieldUserID, msg.UserID,
		log.FieldKind, string(msg.Kind),
		log.FieldPeriod, string(msg.Period))

	w.service.Invalidate(msg.UserID)

	kinds := allKinds
	if msg.Kind != "" {
		kinds = []core.TransactionKind{msg.Kind}
	}
	periods := allPeriods
	if msg.Period != "" {
		periods = []core.Period{msg.Period}
	}
	return w.snapshotUser(ctx, msg.UserID, kinds, periods)
}

// RefreshAll snapshots every report of every known user. Failures are
// collected so one bad user does not stop the sweep.
func (w *SnapshotWorker) RefreshAll(ctx context.Context) error {
	users, err := w.users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	w.logger.InfoContext(ctx, "Starting periodic snapshot refresh", "users", len(users))

	var errs []error
	for _, u := range users {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.service.Invalidate(u)
		if err := w.snapshotUser(ctx, u, allKinds, allPeriods); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run refreshes every interval until ctx ends.
func (w *SnapshotWorker) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.RefreshAll(ctx); err != nil && !errors.Is(err, context.Canceled) {
				w.logger.ErrorContext(ctx, "Periodic snapshot refresh failed", log.FieldError, err)
			}
		}
	}
}

func (w *SnapshotWorker) snapshotUser(ctx context.Context, userID string, kinds []core.TransactionKind, periods []core.Period) error {
	taken := w.now().UTC()
	var errs []error
	for _, kind := range kinds {
		for _, period := range periods {
			q := core.Query{UserID: userID, Period: period, Kind: kind}
			report, err := w.service.Report(ctx, q, nil)
			if err != nil {
				errs = append(errs, fmt.Errorf("report %s: %w", q.Key(), err))
				continue
			}
			// Sample data must never be exported as if it were the user's.
			if report.FromFallback {
				errs = append(errs, fmt.Errorf("report %s: data source unavailable", q.Key()))
				continue
			}
			if len(report.Categories) == 0 {
				continue
			}
			snap := core.Snapshot{
				TakenAt:    taken,
				UserID:     userID,
				Period:     period,
				Kind:       kind,
				Total:      report.Total,
				Categories: report.Categories,
			}
			ref, err := w.writer.WriteSnapshot(ctx, snap)
			if err != nil {
				errs = append(errs, fmt.Errorf("write snapshot %s: %w", q.Key(), err))
				continue
			}
			w.logger.DebugContext(ctx, "Snapshot stored", log.FieldUserID, userID, log.FieldKind, string(kind), log.FieldPeriod, string(period), "ref", ref)
		}
	}
	return errors.Join(errs...)
}

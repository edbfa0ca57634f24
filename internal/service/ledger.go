package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"github.com/fieldhq/dispatch-engine/internal/events"
	"github.com/fieldhq/dispatch-engine/internal/payout"
	"github.com/fieldhq/dispatch-engine/internal/store"
	"github.com/fieldhq/dispatch-engine/internal/store/model"
	"github.com/fieldhq/dispatch-engine/pkg/log"
	"github.com/fieldhq/dispatch-engine/pkg/metrics"
	"github.com/fieldhq/dispatch-engine/pkg/retry"
)

// LedgerService turns completed assignments into payout ledger entries. All
// payout math lives in the payout package; this service only decides who gets
// an entry and records it exactly once per (job, pro).
type LedgerService struct {
	store      store.Store
	calculator *payout.Calculator
	events     *events.EventProducer
	retry      retry.Policy
	logger     *log.StructuredLogger
}

func NewLedgerService(s store.Store, producer *events.EventProducer) *LedgerService {
	return &LedgerService{
		store:      s,
		calculator: payout.NewCalculator(),
		events:     producer,
		retry:      retry.DefaultPolicy(storeRetryable),
		logger:     log.NewDebugLogger("ledger_service"),
	}
}

// LedgerWrite reports the outcome of one completion.
type LedgerWrite struct {
	Entry   *model.PayoutLedgerEntry
	Skipped bool
}

// BackfillResult summarizes one reconciliation sweep.
type BackfillResult struct {
	Written int
	Skipped int
}

// WriteForCompletion records the payout owed for one completed assignment.
// A second call for the same (job, pro) pair is a no-op returning the
// existing entry, so completion retries and the backfill sweep never double
// pay.
func (l *LedgerService) WriteForCompletion(ctx context.Context, assignment *model.Assignment) (*LedgerWrite, error) {
	tracer := l.logger.WithContext(ctx).Operation("write_ledger_entry").
		WithUUID("job_id", assignment.JobID).
		WithUUID("pro_id", assignment.ProID).
		Build()

	existing, err := l.store.PayoutLedger().GetByJobAndPro(ctx, assignment.JobID, assignment.ProID)
	if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		tracer.Step("entry exists").Log()
		return &LedgerWrite{Entry: existing, Skipped: true}, nil
	}

	job, err := l.store.Job().Get(ctx, assignment.JobID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrJobNotFound(assignment.JobID)
		}
		return nil, err
	}

	amount, role, source, err := l.amountForPro(ctx, job, assignment.ProID)
	if err != nil {
		return nil, err
	}
	tracer.Step("amount computed").
		WithInt("amount_cents", int(amount)).
		WithString("role", role).
		WithString("source", source).
		Log()

	entry := model.PayoutLedgerEntry{
		ID:          uuid.New(),
		ProID:       assignment.ProID,
		JobID:       assignment.JobID,
		AmountCents: amount,
		State:       model.PayoutStatePending,
		Note:        role,
	}

	var created *model.PayoutLedgerEntry
	err = l.retry.Do(ctx, func() error {
		var createErr error
		created, createErr = l.store.PayoutLedger().Create(ctx, entry)
		return createErr
	})
	if err != nil {
		// A concurrent writer beat us; their entry stands.
		if errors.Is(err, store.ErrDuplicateKey) {
			existing, getErr := l.store.PayoutLedger().GetByJobAndPro(ctx, assignment.JobID, assignment.ProID)
			if getErr != nil {
				return nil, getErr
			}
			return &LedgerWrite{Entry: existing, Skipped: true}, nil
		}
		tracer.Error(err).Log()
		return nil, err
	}

	l.emitPayoutEvent(ctx, created, source)
	metrics.IncreaseLedgerEntriesMetric(role)
	tracer.Success().Log()
	return &LedgerWrite{Entry: created}, nil
}

// amountForPro computes one pro's share of the job payout. Without a team
// split the pro is solo and takes the full amount; with one, the split mode
// decides the shares and the pro's role on the split decides which share.
func (l *LedgerService) amountForPro(ctx context.Context, job *model.Job, proID uuid.UUID) (amount int64, role, source string, err error) {
	in := payout.Input{}
	for _, li := range job.LineItems {
		in.LineItems = append(in.LineItems, payout.LineItem{
			Category:       li.ServiceCategory,
			ProPayoutCents: li.ProPayoutCents,
		})
	}
	if job.Metadata != nil {
		in.EstimatedPayoutCents = job.Metadata.Data.EstimatedPayoutCents
	}
	result := l.calculator.Compute(in)

	split, err := l.store.TeamSplit().GetByJob(ctx, job.ID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return result.AmountCents, model.PayoutRoleSolo, result.Source, nil
		}
		return 0, "", "", err
	}
	if split.SecondaryProID == nil {
		return result.AmountCents, model.PayoutRoleSolo, result.Source, nil
	}

	primary, secondary := payout.SplitAmount(result.AmountCents, payout.TeamSplit{
		Mode:               payout.SplitMode(split.Mode),
		PrimaryPercent:     split.PrimaryPercent,
		PrimaryFlatCents:   split.PrimaryFlatCents,
		SecondaryFlatCents: split.SecondaryFlatCents,
	})

	switch proID {
	case split.PrimaryProID:
		return primary, model.PayoutRolePrimary, result.Source, nil
	case *split.SecondaryProID:
		return secondary, model.PayoutRoleSecondary, result.Source, nil
	default:
		// The pro completed the job but is not on the split; pay the full
		// amount as solo and let the admin workflow sort the split out.
		return result.AmountCents, model.PayoutRoleSolo, result.Source, nil
	}
}

// Backfill sweeps all completed assignments and writes the missing ledger
// entries, counting already-paid pairs as skipped. Running it twice in a row
// writes nothing the second time.
func (l *LedgerService) Backfill(ctx context.Context) (*BackfillResult, error) {
	tracer := l.logger.WithContext(ctx).Operation("ledger_backfill").Build()

	assignments, err := l.store.Assignment().ListCompleted(ctx)
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}
	tracer.Step("candidates loaded").WithInt("count", len(assignments)).Log()

	result := &BackfillResult{}
	for i := range assignments {
		write, err := l.WriteForCompletion(ctx, &assignments[i])
		if err != nil {
			tracer.Error(err).WithUUID("assignment_id", assignments[i].ID).Log()
			return result, err
		}
		if write.Skipped {
			result.Skipped++
		} else {
			result.Written++
		}
	}

	tracer.Success().WithInt("written", result.Written).WithInt("skipped", result.Skipped).Log()
	return result, nil
}

func (l *LedgerService) emitPayoutEvent(ctx context.Context, entry *model.PayoutLedgerEntry, source string) {
	if l.events == nil {
		return
	}

	body, err := json.Marshal(events.PayoutEvent{
		JobID:       entry.JobID.String(),
		ProID:       entry.ProID.String(),
		AmountCents: entry.AmountCents,
		Role:        entry.Note,
		Source:      source,
	})
	if err != nil {
		return
	}

	if err := l.events.Write(ctx, events.PayoutMessageKind, bytes.NewReader(body)); err != nil {
		l.logger.WithContext(ctx).Operation("emit_payout_event").
			WithUUID("entry_id", entry.ID).
			Build().Error(err).Log()
	}
}

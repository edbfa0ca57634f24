package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fieldhq/dispatch-engine/internal/auth"
	"github.com/fieldhq/dispatch-engine/internal/events"
	"github.com/fieldhq/dispatch-engine/internal/notify"
	"github.com/fieldhq/dispatch-engine/internal/store"
	"github.com/fieldhq/dispatch-engine/internal/store/model"
	"github.com/fieldhq/dispatch-engine/pkg/log"
	"github.com/fieldhq/dispatch-engine/pkg/metrics"
	"github.com/fieldhq/dispatch-engine/pkg/retry"
)

// AssignmentService owns the offer state machine. Every transition is a
// compare-and-set in the store, so concurrent updates lose cleanly instead of
// overwriting each other.
type AssignmentService struct {
	store    store.Store
	notifier notify.Notifier
	events   *events.EventProducer
	ledger   *LedgerService
	retry    retry.Policy
	logger   *log.StructuredLogger
}

func NewAssignmentService(s store.Store, notifier notify.Notifier, producer *events.EventProducer, ledger *LedgerService) *AssignmentService {
	return &AssignmentService{
		store:    s,
		notifier: notifier,
		events:   producer,
		ledger:   ledger,
		retry:    retry.DefaultPolicy(storeRetryable),
		logger:   log.NewDebugLogger("assignment_service"),
	}
}

// authorize rejects a pro acting on another pro's offer. Admin callers may
// act on any pair.
func (a *AssignmentService) authorize(ctx context.Context, proID uuid.UUID) error {
	user, found := auth.UserFromContext(ctx)
	if !found || user.Role == auth.RoleAdmin {
		return nil
	}
	if user.ProID != proID {
		return NewErrOfferForbidden(user.ProID)
	}
	return nil
}

// Accept moves an offer to accepted. Accepting an already accepted offer is
// idempotent and returns the existing row. When no offer exists for an
// offerable job the acceptance creates the assignment directly, covering pros
// who claim jobs from the open board.
func (a *AssignmentService) Accept(ctx context.Context, jobID, proID uuid.UUID) (*model.Assignment, error) {
	tracer := a.logger.WithContext(ctx).Operation("accept_offer").
		WithUUID("job_id", jobID).
		WithUUID("pro_id", proID).
		Build()

	if err := a.authorize(ctx, proID); err != nil {
		return nil, err
	}

	assignment, err := a.store.Assignment().GetByJobAndPro(ctx, jobID, proID)
	if err != nil {
		if !errors.Is(err, store.ErrRecordNotFound) {
			return nil, err
		}
		return a.directAccept(ctx, jobID, proID)
	}

	switch assignment.State {
	case model.AssignmentStateAccepted:
		tracer.Step("already accepted").Log()
		return assignment, nil
	case model.AssignmentStateDeclined, model.AssignmentStateCompleted:
		return nil, NewErrInvalidTransition(jobID, proID, string(assignment.State), string(model.AssignmentStateAccepted))
	}

	var updated *model.Assignment
	err = a.retry.Do(ctx, func() error {
		var txErr error
		updated, txErr = a.store.Assignment().Transition(ctx, assignment.ID, model.AssignmentStateOffered, model.AssignmentStateAccepted, time.Now())
		return txErr
	})
	if err != nil {
		if errors.Is(err, store.ErrPreconditionFailed) {
			return nil, NewErrInvalidTransition(jobID, proID, string(assignment.State), string(model.AssignmentStateAccepted))
		}
		tracer.Error(err).Log()
		return nil, err
	}

	a.markJobAccepted(ctx, jobID)
	go a.notifier.NotifyPro(context.WithoutCancel(ctx), jobID, proID, notify.TypeOfferAccept)
	emitOfferEvent(ctx, a.events, a.logger, updated)

	metrics.IncreaseAcceptsMetric()
	tracer.Success().Log()
	return updated, nil
}

// directAccept handles acceptance without a prior offer.
func (a *AssignmentService) directAccept(ctx context.Context, jobID, proID uuid.UUID) (*model.Assignment, error) {
	tracer := a.logger.WithContext(ctx).Operation("direct_accept").
		WithUUID("job_id", jobID).
		WithUUID("pro_id", proID).
		Build()

	job, err := a.store.Job().Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrJobNotFound(jobID)
		}
		return nil, err
	}
	if job.Status != model.JobStatusPendingAssign && job.Status != model.JobStatusOfferSent {
		return nil, NewErrJobNotOfferable(jobID, string(job.Status))
	}

	if _, err := a.store.Pro().Get(ctx, proID); err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrProNotFound(proID)
		}
		return nil, err
	}

	now := time.Now()
	assignment := model.Assignment{
		ID:         uuid.New(),
		JobID:      jobID,
		ProID:      proID,
		State:      model.AssignmentStateAccepted,
		OfferedAt:  now,
		AcceptedAt: &now,
	}

	var created *model.Assignment
	err = a.retry.Do(ctx, func() error {
		var createErr error
		created, createErr = a.store.Assignment().Create(ctx, assignment)
		return createErr
	})
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}

	a.markJobAccepted(ctx, jobID)
	go a.notifier.NotifyPro(context.WithoutCancel(ctx), jobID, proID, notify.TypeOfferAccept)
	emitOfferEvent(ctx, a.events, a.logger, created)

	metrics.IncreaseAcceptsMetric()
	tracer.Success().Log()
	return created, nil
}

// markJobAccepted flips the job status after an acceptance. The assignment
// row is the authoritative record; a lost race here is not an error.
func (a *AssignmentService) markJobAccepted(ctx context.Context, jobID uuid.UUID) {
	err := a.store.Job().UpdateStatus(ctx, jobID, []model.JobStatus{model.JobStatusPendingAssign, model.JobStatusOfferSent}, model.JobStatusAccepted)
	if err != nil && !errors.Is(err, store.ErrPreconditionFailed) {
		a.logger.WithContext(ctx).Operation("mark_job_accepted").
			WithUUID("job_id", jobID).
			Build().Error(err).Log()
	}
}

// Decline moves an offer to declined. A declined or completed assignment is
// terminal, so declining again reports the offer as gone; declining an
// accepted assignment is a conflict. Job status is never mutated here so the
// job remains offerable to other pros.
func (a *AssignmentService) Decline(ctx context.Context, jobID, proID uuid.UUID) (*model.Assignment, error) {
	tracer := a.logger.WithContext(ctx).Operation("decline_offer").
		WithUUID("job_id", jobID).
		WithUUID("pro_id", proID).
		Build()

	if err := a.authorize(ctx, proID); err != nil {
		return nil, err
	}

	assignment, err := a.store.Assignment().GetByJobAndPro(ctx, jobID, proID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrOfferNotFound(jobID, proID)
		}
		return nil, err
	}

	switch assignment.State {
	case model.AssignmentStateDeclined, model.AssignmentStateCompleted:
		tracer.Step("offer already terminal").WithString("state", string(assignment.State)).Log()
		return nil, NewErrOfferNotFound(jobID, proID)
	case model.AssignmentStateAccepted:
		return nil, NewErrInvalidTransition(jobID, proID, string(assignment.State), string(model.AssignmentStateDeclined))
	}

	var updated *model.Assignment
	err = a.retry.Do(ctx, func() error {
		var txErr error
		updated, txErr = a.store.Assignment().Transition(ctx, assignment.ID, model.AssignmentStateOffered, model.AssignmentStateDeclined, time.Now())
		return txErr
	})
	if err != nil {
		if errors.Is(err, store.ErrPreconditionFailed) {
			return nil, NewErrInvalidTransition(jobID, proID, string(assignment.State), string(model.AssignmentStateDeclined))
		}
		tracer.Error(err).Log()
		return nil, err
	}

	// The job status is untouched; the job stays available for other offers.
	go a.notifier.NotifyPro(context.WithoutCancel(ctx), jobID, proID, notify.TypeOfferDecline)
	emitOfferEvent(ctx, a.events, a.logger, updated)

	metrics.IncreaseDeclinesMetric()
	tracer.Success().Log()
	return updated, nil
}

// Complete moves an accepted assignment to completed and writes the payout
// ledger entry for the completing pro. Only accepted assignments complete;
// anything else is a conflict.
func (a *AssignmentService) Complete(ctx context.Context, jobID, proID uuid.UUID) (*model.Assignment, error) {
	tracer := a.logger.WithContext(ctx).Operation("complete_assignment").
		WithUUID("job_id", jobID).
		WithUUID("pro_id", proID).
		Build()

	if err := a.authorize(ctx, proID); err != nil {
		return nil, err
	}

	assignment, err := a.store.Assignment().GetByJobAndPro(ctx, jobID, proID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrOfferNotFound(jobID, proID)
		}
		return nil, err
	}

	if assignment.State == model.AssignmentStateCompleted {
		tracer.Step("already completed").Log()
		return assignment, nil
	}
	if assignment.State != model.AssignmentStateAccepted {
		return nil, NewErrInvalidTransition(jobID, proID, string(assignment.State), string(model.AssignmentStateCompleted))
	}

	var updated *model.Assignment
	err = a.retry.Do(ctx, func() error {
		var txErr error
		updated, txErr = a.store.Assignment().Transition(ctx, assignment.ID, model.AssignmentStateAccepted, model.AssignmentStateCompleted, time.Now())
		return txErr
	})
	if err != nil {
		if errors.Is(err, store.ErrPreconditionFailed) {
			return nil, NewErrInvalidTransition(jobID, proID, string(assignment.State), string(model.AssignmentStateCompleted))
		}
		tracer.Error(err).Log()
		return nil, err
	}

	if err := a.store.Job().UpdateStatus(ctx, jobID, []model.JobStatus{model.JobStatusAccepted, model.JobStatusEnRoute, model.JobStatusOfferSent}, model.JobStatusCompleted); err != nil && !errors.Is(err, store.ErrPreconditionFailed) {
		tracer.Step("job status flip failed").WithString("error", err.Error()).Log()
	}

	if _, err := a.ledger.WriteForCompletion(ctx, updated); err != nil {
		// The completed assignment is the durable fact; the backfill sweep
		// picks up the missing ledger entry.
		tracer.Step("ledger write failed").WithString("error", err.Error()).Log()
	}

	go a.notifier.NotifyPro(context.WithoutCancel(ctx), jobID, proID, notify.TypeJobCompleted)
	emitOfferEvent(ctx, a.events, a.logger, updated)

	metrics.IncreaseCompletionsMetric()
	tracer.Success().Log()
	return updated, nil
}

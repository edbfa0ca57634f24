package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/fieldhq/dispatch-engine/internal/events"
	"github.com/fieldhq/dispatch-engine/internal/matching"
	"github.com/fieldhq/dispatch-engine/internal/notify"
	"github.com/fieldhq/dispatch-engine/internal/payout"
	"github.com/fieldhq/dispatch-engine/internal/store"
	"github.com/fieldhq/dispatch-engine/internal/store/model"
	"github.com/fieldhq/dispatch-engine/pkg/cache"
	"github.com/fieldhq/dispatch-engine/pkg/log"
	"github.com/fieldhq/dispatch-engine/pkg/metrics"
	"github.com/fieldhq/dispatch-engine/pkg/retry"
)

// storeRetryable excludes the outcomes that retrying cannot change.
func storeRetryable(err error) bool {
	return !errors.Is(err, store.ErrRecordNotFound) &&
		!errors.Is(err, store.ErrPreconditionFailed) &&
		!errors.Is(err, store.ErrDuplicateKey)
}

// Match is a ranked candidate pro for a job.
type Match struct {
	Pro           model.Pro
	DistanceMiles *float64
	RadiusMiles   float64
}

type DispatchService struct {
	store    store.Store
	notifier notify.Notifier
	events   *events.EventProducer
	proCache *cache.Cache[model.ProList]
	retry    retry.Policy
	logger   *log.StructuredLogger
}

func NewDispatchService(s store.Store, notifier notify.Notifier, producer *events.EventProducer, proCacheTTL time.Duration) *DispatchService {
	return &DispatchService{
		store:    s,
		notifier: notifier,
		events:   producer,
		proCache: cache.New[model.ProList](proCacheTTL),
		retry:    retry.DefaultPolicy(storeRetryable),
		logger:   log.NewDebugLogger("dispatch_service"),
	}
}

// activePros is a read-through cache over the active pro roster. Matching
// tolerates the configured staleness; offers always hit the store directly.
func (d *DispatchService) activePros(ctx context.Context) (model.ProList, error) {
	if pros, ok := d.proCache.Get(); ok {
		return pros, nil
	}

	pros, err := d.store.Pro().List(ctx, store.NewProQueryFilter().ByActive(true))
	if err != nil {
		return nil, err
	}
	d.proCache.Set(pros)
	return pros, nil
}

// FindMatches returns the eligible pros for a job, nearest first. A job
// without coordinates yields every active pro unranked. Zero matches is a
// valid outcome, not an error.
func (d *DispatchService) FindMatches(ctx context.Context, jobID uuid.UUID) ([]Match, error) {
	tracer := d.logger.WithContext(ctx).Operation("find_matches").
		WithUUID("job_id", jobID).
		Build()

	job, err := d.store.Job().Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrJobNotFound(jobID)
		}
		tracer.Error(err).Log()
		return nil, err
	}

	pros, err := d.activePros(ctx)
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}
	tracer.Step("candidates loaded").WithInt("count", len(pros)).Log()

	byID := make(map[uuid.UUID]model.Pro, len(pros))
	candidates := make([]matching.Candidate, 0, len(pros))
	for _, pro := range pros {
		byID[pro.ID] = pro
		c := matching.Candidate{
			ProID:       pro.ID,
			RadiusMiles: pro.ServiceRadiusMiles,
			Active:      pro.Active,
		}
		if pro.HasLocation() {
			c.Location = &matching.LatLng{Lat: *pro.HomeLat, Lng: *pro.HomeLng}
		}
		candidates = append(candidates, c)
	}

	found := matching.Find(jobLocation(job), candidates)

	matches := make([]Match, 0, len(found))
	for _, m := range found {
		matches = append(matches, Match{
			Pro:           byID[m.ProID],
			DistanceMiles: m.DistanceMiles,
			RadiusMiles:   m.RadiusMiles,
		})
	}

	tracer.Success().WithInt("matches", len(matches)).Log()
	return matches, nil
}

// SendOffer creates an offered assignment for the pro. A second offer for the
// same pair is rejected unless the previous one was declined. The job status
// flip to offer_sent is best effort; the assignment row is authoritative.
// The distance hint is only consulted when the job or pro coordinates are
// missing; a computable distance always wins.
func (d *DispatchService) SendOffer(ctx context.Context, jobID, proID uuid.UUID, distanceHint *float64) (*model.Assignment, error) {
	tracer := d.logger.WithContext(ctx).Operation("send_offer").
		WithUUID("job_id", jobID).
		WithUUID("pro_id", proID).
		Build()

	job, err := d.store.Job().Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrJobNotFound(jobID)
		}
		return nil, err
	}
	if job.Status != model.JobStatusPendingAssign && job.Status != model.JobStatusOfferSent {
		return nil, NewErrJobNotOfferable(jobID, string(job.Status))
	}

	pro, err := d.store.Pro().Get(ctx, proID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, NewErrProNotFound(proID)
		}
		return nil, err
	}

	existing, err := d.store.Assignment().GetByJobAndPro(ctx, jobID, proID)
	if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.State != model.AssignmentStateDeclined {
		metrics.IncreaseOfferConflictsMetric()
		tracer.Step("conflict").WithString("existing_state", string(existing.State)).Log()
		return nil, NewErrDuplicateOffer(jobID, proID)
	}

	assignment := model.Assignment{
		ID:        uuid.New(),
		JobID:     jobID,
		ProID:     proID,
		State:     model.AssignmentStateOffered,
		OfferedAt: time.Now(),
	}
	if loc := jobLocation(job); loc != nil && pro.HasLocation() {
		distance := matching.Haversine(*loc, matching.LatLng{Lat: *pro.HomeLat, Lng: *pro.HomeLng})
		assignment.DistanceMiles = &distance
	} else if distanceHint != nil {
		assignment.DistanceMiles = distanceHint
	}

	var created *model.Assignment
	err = d.retry.Do(ctx, func() error {
		var createErr error
		created, createErr = d.store.Assignment().Create(ctx, assignment)
		return createErr
	})
	if err != nil {
		tracer.Error(err).Log()
		return nil, err
	}

	d.ensurePayoutEstimate(ctx, job)

	// Losing this race to another offer is fine, the job is already marked.
	if err := d.store.Job().UpdateStatus(ctx, jobID, []model.JobStatus{model.JobStatusPendingAssign}, model.JobStatusOfferSent); err != nil && !errors.Is(err, store.ErrPreconditionFailed) {
		tracer.Step("job status flip failed").WithString("error", err.Error()).Log()
	}

	go d.notifier.NotifyPro(context.WithoutCancel(ctx), jobID, proID, notify.TypeOfferSent)
	d.emitOfferEvent(ctx, created)

	metrics.IncreaseOffersSentMetric()
	tracer.Success().WithUUID("assignment_id", created.ID).Log()
	return created, nil
}

// ensurePayoutEstimate backfills the creation-time estimate for jobs booked
// before estimation existed. Failures only cost observability.
func (d *DispatchService) ensurePayoutEstimate(ctx context.Context, job *model.Job) {
	if job.SubtotalCents <= 0 {
		return
	}
	if job.Metadata != nil && job.Metadata.Data.EstimatedPayoutCents > 0 {
		return
	}
	if err := d.store.Job().UpdateEstimatedPayout(ctx, job.ID, payout.EstimateCents(job.SubtotalCents)); err != nil {
		d.logger.WithContext(ctx).Operation("ensure_payout_estimate").
			WithUUID("job_id", job.ID).
			Build().Error(err).Log()
	}
}

func (d *DispatchService) emitOfferEvent(ctx context.Context, assignment *model.Assignment) {
	emitOfferEvent(ctx, d.events, d.logger, assignment)
}

func jobLocation(job *model.Job) *matching.LatLng {
	lat, lng := job.Location()
	if lat == nil || lng == nil {
		return nil
	}
	loc := matching.LatLng{Lat: *lat, Lng: *lng}
	if loc.IsZero() {
		return nil
	}
	return &loc
}

// emitOfferEvent serializes the assignment onto the event stream. Delivery is
// advisory; a dead producer never fails the request.
func emitOfferEvent(ctx context.Context, producer *events.EventProducer, logger *log.StructuredLogger, assignment *model.Assignment) {
	if producer == nil {
		return
	}

	body, err := json.Marshal(events.OfferEvent{
		JobID:         assignment.JobID.String(),
		ProID:         assignment.ProID.String(),
		State:         string(assignment.State),
		DistanceMiles: assignment.DistanceMiles,
	})
	if err != nil {
		return
	}

	if err := producer.Write(ctx, events.OfferMessageKind, bytes.NewReader(body)); err != nil {
		logger.WithContext(ctx).Operation("emit_offer_event").
			WithUUID("assignment_id", assignment.ID).
			Build().Error(err).Log()
	}
}

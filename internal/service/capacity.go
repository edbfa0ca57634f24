package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fieldhq/dispatch-engine/internal/matching"
	"github.com/fieldhq/dispatch-engine/internal/store"
	"github.com/fieldhq/dispatch-engine/internal/store/model"
	"github.com/fieldhq/dispatch-engine/pkg/log"
	"github.com/fieldhq/dispatch-engine/pkg/metrics"
)

const dateLayout = "2006-01-02"

// Availability modes. Intelligent mode sums per-pro capacity rows; fallback
// mode applies the flat city-wide cap when no pro has declared capacity for
// the date and slot.
const (
	ModeIntelligent = "intelligent"
	ModeFallback    = "fallback"
)

// SlotAvailability is the open capacity for one date and time slot.
// ProsConsidered counts the pros whose capacity rows fed the intelligent
// computation; it is zero in fallback mode.
type SlotAvailability struct {
	Date           string
	TimeSlot       string
	Available      bool
	Remaining      int
	ProsConsidered int
	Mode           string
}

type CapacityService struct {
	store       store.Store
	fallbackCap int
	logger      *log.StructuredLogger
}

func NewCapacityService(s store.Store, fallbackSlotCapacity int) *CapacityService {
	return &CapacityService{
		store:       s,
		fallbackCap: fallbackSlotCapacity,
		logger:      log.NewDebugLogger("capacity_service"),
	}
}

// Remaining returns the open capacity for one date and slot. When any pro
// has declared capacity for the pair the answer is the sum of their open
// spots; otherwise the flat fallback cap minus the jobs already booked into
// the slot, never below zero.
func (c *CapacityService) Remaining(ctx context.Context, date, timeSlot string, near *matching.LatLng) (*SlotAvailability, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}

	declared, err := c.store.CapacitySlot().AnyForDateSlot(ctx, date, timeSlot)
	if err != nil {
		return nil, err
	}

	availability := &SlotAvailability{Date: date, TimeSlot: timeSlot}
	if declared {
		availability.Mode = ModeIntelligent
		availability.Remaining, availability.ProsConsidered, err = c.declaredRemaining(ctx, date, timeSlot, near)
	} else {
		availability.Mode = ModeFallback
		availability.Remaining, err = c.fallbackRemaining(ctx, day, timeSlot)
	}
	if err != nil {
		return nil, err
	}
	availability.Available = availability.Remaining > 0

	metrics.IncreaseAvailabilityModeMetric(availability.Mode)
	return availability, nil
}

// declaredRemaining sums the open spots over capacity rows whose pro is
// active and, when a reference point is given, within service range of it.
func (c *CapacityService) declaredRemaining(ctx context.Context, date, timeSlot string, near *matching.LatLng) (int, int, error) {
	slots, err := c.store.CapacitySlot().ListForDateSlot(ctx, date, timeSlot)
	if err != nil {
		return 0, 0, err
	}

	proIDs := make([]uuid.UUID, 0, len(slots))
	for _, slot := range slots {
		proIDs = append(proIDs, slot.ProID)
	}
	pros, err := c.store.Pro().List(ctx, store.NewProQueryFilter().ByID(proIDs).ByActive(true))
	if err != nil {
		return 0, 0, err
	}

	eligible := make(map[uuid.UUID]bool, len(pros))
	for _, pro := range pros {
		if near != nil && !near.IsZero() && pro.HasLocation() {
			radius := pro.ServiceRadiusMiles
			if radius <= 0 {
				radius = matching.DefaultRadiusMiles
			}
			if matching.Haversine(*near, matching.LatLng{Lat: *pro.HomeLat, Lng: *pro.HomeLng}) > radius {
				continue
			}
		}
		// A pro without a location is counted unfiltered rather than dropped.
		eligible[pro.ID] = true
	}

	remaining, considered := 0, 0
	for _, slot := range slots {
		if eligible[slot.ProID] {
			considered++
			remaining += slot.Remaining()
		}
	}
	return remaining, considered, nil
}

// fallbackRemaining applies the flat cap minus the live jobs already booked
// into the slot.
func (c *CapacityService) fallbackRemaining(ctx context.Context, day time.Time, timeSlot string) (int, error) {
	from := day
	to := day.Add(24 * time.Hour)

	jobs, err := c.store.Job().List(ctx, store.NewJobQueryFilter().ByScheduledBetween(from, to))
	if err != nil {
		return 0, err
	}

	booked := 0
	for _, job := range jobs {
		if job.Status == model.JobStatusCancelled {
			continue
		}
		if job.TimeSlot() == timeSlot {
			booked++
		}
	}

	remaining := c.fallbackCap - booked
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Availability reports every slot between two dates inclusive.
func (c *CapacityService) Availability(ctx context.Context, fromDate, toDate string, near *matching.LatLng) ([]SlotAvailability, error) {
	tracer := c.logger.WithContext(ctx).Operation("availability").
		WithString("from", fromDate).
		WithString("to", toDate).
		Build()

	from, err := time.Parse(dateLayout, fromDate)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", fromDate, err)
	}
	to, err := time.Parse(dateLayout, toDate)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", toDate, err)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("date range ends %s before it starts %s", toDate, fromDate)
	}

	result := make([]SlotAvailability, 0, 3*int(to.Sub(from).Hours()/24+1))
	for day := from; !day.After(to); day = day.Add(24 * time.Hour) {
		for _, slot := range model.ServiceSlots() {
			availability, err := c.Remaining(ctx, day.Format(dateLayout), slot, near)
			if err != nil {
				tracer.Error(err).Log()
				return nil, err
			}
			result = append(result, *availability)
		}
	}

	tracer.Success().WithInt("slots", len(result)).Log()
	return result, nil
}

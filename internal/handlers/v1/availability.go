package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/render"

	api "github.com/fieldhq/dispatch-engine/internal/api/v1"
	"github.com/fieldhq/dispatch-engine/internal/matching"
	"github.com/fieldhq/dispatch-engine/pkg/log"
)

type availabilityQuery struct {
	From string `validate:"required,service_date"`
	To   string `validate:"required,service_date"`
	Slot string `validate:"time_slot"`
}

// (GET /api/v1/availability)
func (h *ServiceHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.NewDebugLogger("availability_handler").
		WithContext(ctx).
		Operation("get_availability").
		Build()

	query := availabilityQuery{
		From: r.URL.Query().Get("from"),
		To:   r.URL.Query().Get("to"),
		Slot: r.URL.Query().Get("slot"),
	}
	if query.To == "" {
		query.To = query.From
	}
	if err := h.validator.Struct(query); err != nil {
		logger.Error(err).Log()
		renderBadRequest(w, r, err)
		return
	}

	near, err := parseLatLng(r.URL.Query().Get("lat"), r.URL.Query().Get("lng"))
	if err != nil {
		logger.Error(err).Log()
		renderBadRequest(w, r, err)
		return
	}

	slots, err := h.capacitySrv.Availability(ctx, query.From, query.To, near)
	if err != nil {
		logger.Error(err).Log()
		renderServiceError(w, r, err)
		return
	}

	reply := api.AvailabilityReply{Slots: make([]api.SlotReply, 0, len(slots))}
	for _, slot := range slots {
		if query.Slot != "" && slot.TimeSlot != query.Slot {
			continue
		}
		reply.Slots = append(reply.Slots, api.SlotReply{
			Date:           slot.Date,
			TimeSlot:       slot.TimeSlot,
			Available:      slot.Available,
			SpotsRemaining: slot.Remaining,
			ProsConsidered: slot.ProsConsidered,
			Mode:           slot.Mode,
		})
	}

	logger.Success().WithInt("slots", len(reply.Slots)).Log()
	_ = render.Render(w, r, reply)
}

func parseLatLng(latParam, lngParam string) (*matching.LatLng, error) {
	if latParam == "" && lngParam == "" {
		return nil, nil
	}
	if latParam == "" || lngParam == "" {
		return nil, fmt.Errorf("lat and lng must be given together")
	}

	lat, err := strconv.ParseFloat(latParam, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lat %q: %w", latParam, err)
	}
	lng, err := strconv.ParseFloat(lngParam, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid lng %q: %w", lngParam, err)
	}
	return &matching.LatLng{Lat: lat, Lng: lng}, nil
}

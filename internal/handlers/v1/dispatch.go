package v1

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	api "github.com/fieldhq/dispatch-engine/internal/api/v1"
	"github.com/fieldhq/dispatch-engine/pkg/log"
)

// (POST /api/v1/jobs/{id}/matches)
func (h *ServiceHandler) FindMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.NewDebugLogger("dispatch_handler").
		WithContext(ctx).
		Operation("find_matches").
		Build()

	jobID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		logger.Error(err).Log()
		renderBadRequest(w, r, fmt.Errorf("invalid job id: %w", err))
		return
	}

	matches, err := h.dispatchSrv.FindMatches(ctx, jobID)
	if err != nil {
		logger.Error(err).Log()
		renderServiceError(w, r, err)
		return
	}

	reply := api.MatchListReply{JobID: jobID.String(), Matches: make([]api.MatchReply, 0, len(matches))}
	for _, m := range matches {
		reply.Matches = append(reply.Matches, api.MatchReply{
			ProID:         m.Pro.ID.String(),
			Name:          m.Pro.Name,
			DistanceMiles: m.DistanceMiles,
			RadiusMiles:   m.RadiusMiles,
		})
	}
	reply.TotalMatches = len(reply.Matches)

	logger.Success().WithInt("matches", len(reply.Matches)).Log()
	_ = render.Render(w, r, reply)
}

// (POST /api/v1/offers)
func (h *ServiceHandler) SendOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.NewDebugLogger("dispatch_handler").
		WithContext(ctx).
		Operation("send_offer").
		Build()

	form, err := h.bindOfferForm(r)
	if err != nil {
		logger.Error(err).Log()
		renderBadRequest(w, r, err)
		return
	}

	assignment, err := h.dispatchSrv.SendOffer(ctx, form.jobID, form.proID, form.distanceMiles)
	if err != nil {
		logger.Error(err).Log()
		renderServiceError(w, r, err)
		return
	}

	logger.Success().WithUUID("assignment_id", assignment.ID).Log()
	render.Status(r, http.StatusCreated)
	_ = render.Render(w, r, assignmentToReply(assignment))
}

type offerForm struct {
	jobID         uuid.UUID
	proID         uuid.UUID
	distanceMiles *float64
}

func (h *ServiceHandler) bindOfferForm(r *http.Request) (*offerForm, error) {
	var form api.OfferForm
	if err := render.Bind(r, &form); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if err := h.validator.Struct(form); err != nil {
		return nil, err
	}

	// ids are parseable after validation
	jobID, _ := uuid.Parse(form.JobID)
	proID, _ := uuid.Parse(form.ProID)
	return &offerForm{jobID: jobID, proID: proID, distanceMiles: form.DistanceMiles}, nil
}

package v1

import (
	"net/http"

	"github.com/go-chi/render"

	api "github.com/fieldhq/dispatch-engine/internal/api/v1"
	"github.com/fieldhq/dispatch-engine/internal/store/model"
	"github.com/fieldhq/dispatch-engine/pkg/log"
)

// (POST /api/v1/offers/accept)
func (h *ServiceHandler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.NewDebugLogger("assignment_handler").
		WithContext(ctx).
		Operation("accept_offer").
		Build()

	form, err := h.bindOfferForm(r)
	if err != nil {
		logger.Error(err).Log()
		renderBadRequest(w, r, err)
		return
	}

	assignment, err := h.assignmentSrv.Accept(ctx, form.jobID, form.proID)
	if err != nil {
		logger.Error(err).Log()
		renderServiceError(w, r, err)
		return
	}

	logger.Success().WithUUID("assignment_id", assignment.ID).Log()
	_ = render.Render(w, r, assignmentToReply(assignment))
}

// (POST /api/v1/offers/decline)
func (h *ServiceHandler) DeclineOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.NewDebugLogger("assignment_handler").
		WithContext(ctx).
		Operation("decline_offer").
		Build()

	form, err := h.bindOfferForm(r)
	if err != nil {
		logger.Error(err).Log()
		renderBadRequest(w, r, err)
		return
	}

	assignment, err := h.assignmentSrv.Decline(ctx, form.jobID, form.proID)
	if err != nil {
		logger.Error(err).Log()
		renderServiceError(w, r, err)
		return
	}

	logger.Success().WithUUID("assignment_id", assignment.ID).Log()
	_ = render.Render(w, r, assignmentToReply(assignment))
}

// (POST /api/v1/assignments/complete)
func (h *ServiceHandler) CompleteAssignment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.NewDebugLogger("assignment_handler").
		WithContext(ctx).
		Operation("complete_assignment").
		Build()

	form, err := h.bindOfferForm(r)
	if err != nil {
		logger.Error(err).Log()
		renderBadRequest(w, r, err)
		return
	}

	assignment, err := h.assignmentSrv.Complete(ctx, form.jobID, form.proID)
	if err != nil {
		logger.Error(err).Log()
		renderServiceError(w, r, err)
		return
	}

	logger.Success().WithUUID("assignment_id", assignment.ID).Log()
	_ = render.Render(w, r, assignmentToReply(assignment))
}

func assignmentToReply(assignment *model.Assignment) api.AssignmentReply {
	return api.AssignmentReply{
		ID:            assignment.ID.String(),
		JobID:         assignment.JobID.String(),
		ProID:         assignment.ProID.String(),
		State:         string(assignment.State),
		DistanceMiles: assignment.DistanceMiles,
		OfferedAt:     assignment.OfferedAt,
		AcceptedAt:    assignment.AcceptedAt,
		DeclinedAt:    assignment.DeclinedAt,
		CompletedAt:   assignment.CompletedAt,
	}
}

package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	api "github.com/fieldhq/dispatch-engine/internal/api/v1"
	"github.com/fieldhq/dispatch-engine/internal/handlers/validator"
	"github.com/fieldhq/dispatch-engine/internal/service"
	"github.com/fieldhq/dispatch-engine/pkg/requestid"
)

type ServiceHandler struct {
	dispatchSrv   *service.DispatchService
	assignmentSrv *service.AssignmentService
	capacitySrv   *service.CapacityService
	ledgerSrv     *service.LedgerService
	validator     *validator.Validator
}

func NewServiceHandler(dispatchSrv *service.DispatchService, assignmentSrv *service.AssignmentService, capacitySrv *service.CapacityService, ledgerSrv *service.LedgerService) *ServiceHandler {
	v := validator.NewValidator()
	v.Register(validator.NewOfferValidationRules()...)
	v.Register(validator.NewAvailabilityValidationRules()...)

	return &ServiceHandler{
		dispatchSrv:   dispatchSrv,
		assignmentSrv: assignmentSrv,
		capacitySrv:   capacitySrv,
		ledgerSrv:     ledgerSrv,
		validator:     v,
	}
}

func (h *ServiceHandler) Routes(router chi.Router) {
	router.Post("/jobs/{id}/matches", h.FindMatches)
	router.Post("/offers", h.SendOffer)
	router.Post("/offers/accept", h.AcceptOffer)
	router.Post("/offers/decline", h.DeclineOffer)
	router.Post("/assignments/complete", h.CompleteAssignment)
	router.Get("/availability", h.GetAvailability)
	router.Post("/payouts/backfill", h.BackfillPayouts)
}

// renderServiceError maps service errors onto HTTP statuses. Anything the
// switch does not recognize is an internal error.
func renderServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch err.(type) {
	case *service.ErrResourceNotFound, *service.ErrOfferNotFound:
		status = http.StatusNotFound
	case *service.ErrDuplicateOffer, *service.ErrInvalidTransition:
		status = http.StatusConflict
	case *service.ErrForbidden:
		status = http.StatusUnauthorized
	}
	_ = render.Render(w, r, api.NewErrorReply(status, err.Error(), requestid.FromContextPtr(r.Context())))
}

func renderBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	_ = render.Render(w, r, api.NewErrorReply(http.StatusBadRequest, err.Error(), requestid.FromContextPtr(r.Context())))
}

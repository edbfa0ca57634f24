package v1

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	api "github.com/fieldhq/dispatch-engine/internal/api/v1"
	"github.com/fieldhq/dispatch-engine/internal/auth"
	"github.com/fieldhq/dispatch-engine/pkg/log"
	"github.com/fieldhq/dispatch-engine/pkg/requestid"
)

// (POST /api/v1/payouts/backfill)
func (h *ServiceHandler) BackfillPayouts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := log.NewDebugLogger("payout_handler").
		WithContext(ctx).
		Operation("backfill_payouts").
		Build()

	user, found := auth.UserFromContext(ctx)
	if !found || user.Role != auth.RoleAdmin {
		logger.Error(fmt.Errorf("backfill requires admin role")).Log()
		_ = render.Render(w, r, api.NewErrorReply(http.StatusUnauthorized, "backfill requires admin role", requestid.FromContextPtr(ctx)))
		return
	}

	result, err := h.ledgerSrv.Backfill(ctx)
	if err != nil {
		logger.Error(err).Log()
		renderServiceError(w, r, err)
		return
	}

	logger.Success().WithInt("written", result.Written).WithInt("skipped", result.Skipped).Log()
	_ = render.Render(w, r, api.BackfillReply{Written: result.Written, Skipped: result.Skipped})
}

package v1

import (
	"net/http"

	"github.com/go-chi/render"

	api "github.com/fieldhq/dispatch-engine/internal/api/v1"
)

// (GET /health)
func (h *ServiceHandler) Health(w http.ResponseWriter, r *http.Request) {
	_ = render.Render(w, r, api.HealthReply{Status: "ok"})
}

package handler

import (
	"net/http"
	"time"

	"github.com/commwatch/commwatch/internal/utils"
)

// Stats serves the anonymous public statistics page data.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.PublicStats(time.Now())
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, stats)
}

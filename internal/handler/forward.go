package handler

import (
	"fmt"
	"net/http"

	"github.com/commwatch/commwatch/internal/api"
	mw "github.com/commwatch/commwatch/internal/middleware"
	"github.com/commwatch/commwatch/internal/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ForwardReport(w http.ResponseWriter, r *http.Request) {
	claims := mw.GetClaimsFromContext(r)
	if claims == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	id, err := parseReportId(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	var body api.ForwardReportRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	result, err := h.forward.Forward(r.Context(), id, body.GroupIds, claims.Username)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	message := "Report forwarded successfully"
	if result.Failed > 0 {
		message = fmt.Sprintf("Report forwarded to %d of %d groups", result.Sent, result.Sent+result.Failed)
	}

	writeJSON(w, api.ForwardReportResponse{Message: message, History: result.History})
}

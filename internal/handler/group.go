package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/commwatch/commwatch/internal/api"
	"github.com/commwatch/commwatch/internal/domain"
	internal_errors "github.com/commwatch/commwatch/internal/errors"
	"github.com/commwatch/commwatch/internal/utils"
)

func (h *Handler) GetEmailGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.group.List()
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if groups == nil {
		groups = []domain.EmailGroup{}
	}

	writeJSON(w, groups)
}

func (h *Handler) UpdateEmailGroup(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, &internal_errors.ErrorWithStatusCode{Message: "Invalid group id", StatusCode: http.StatusBadRequest})
		return
	}

	var body api.UpdateGroupRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	group, err := h.group.UpdateEmails(domain.GroupId(id), body.Emails)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, group)
}

package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/commwatch/commwatch/internal/api"
	"github.com/commwatch/commwatch/internal/domain"
	internal_errors "github.com/commwatch/commwatch/internal/errors"
	"github.com/commwatch/commwatch/internal/service"
	"github.com/commwatch/commwatch/internal/utils"
)

// memory buffer for multipart parsing; larger files spill to temp files
const multipartMemory = 1 << 20

// SubmitReport accepts the anonymous intake form: multipart form
// fields plus optional evidence files under the "evidence" field.
func (h *Handler) SubmitReport(w http.ResponseWriter, r *http.Request) {
	maxSize := h.cfg.Public.MaxTotalAttachmentSize + multipartMemory
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			http.Error(w, "Evidence files exceed the upload limit", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	fields := service.SubmitFields{
		Type:        r.FormValue("type"),
		Location:    r.FormValue("location"),
		Date:        r.FormValue("date"),
		Time:        r.FormValue("time"),
		Description: r.FormValue("description"),
		Latitude:    r.FormValue("latitude"),
		Longitude:   r.FormValue("longitude"),
	}

	var files []service.UploadFile
	var closers []interface{ Close() error }
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()
	for _, fh := range r.MultipartForm.File["evidence"] {
		f, err := fh.Open()
		if err != nil {
			http.Error(w, "Failed to read uploaded file", http.StatusBadRequest)
			return
		}
		closers = append(closers, f)
		files = append(files, service.UploadFile{OriginalFilename: fh.Filename, Data: f})
	}

	ref, err := h.report.Submit(r.Context(), fields, files)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSONStatus(w, http.StatusCreated, api.SubmitReportResponse{
		Message:         "Report submitted successfully",
		ReferenceNumber: ref,
	})
}

func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	id, err := parseReportId(chi.URLParam(r, "id"))
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	report, err := h.report.Get(id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, report)
}

func (h *Handler) SearchReports(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	typeFilter := r.URL.Query().Get("type")

	reports, err := h.report.Search(query, typeFilter)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}
	if reports == nil {
		// empty result is a JSON array, not null
		reports = []domain.Report{}
	}

	writeJSON(w, reports)
}

func parseReportId(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &internal_errors.ErrorWithStatusCode{Message: "Invalid report id", StatusCode: http.StatusBadRequest}
	}
	return id, nil
}

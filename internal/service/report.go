package service

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/commwatch/commwatch/internal/domain"
	"github.com/commwatch/commwatch/internal/errors"
	"github.com/commwatch/commwatch/internal/logger"
	"github.com/commwatch/commwatch/internal/storage/blob"
)

type ReportService interface {
	Submit(ctx context.Context, fields SubmitFields, files []UploadFile) (string, error)
	Get(id domain.ReportId) (domain.Report, error)
	Search(query, typeFilter string) ([]domain.Report, error)
}

type ReportStorage interface {
	CreateReport(report domain.Report) (domain.ReportId, error)
	Report(id domain.ReportId) (domain.Report, error)
	Reports(query, typeFilter string) ([]domain.Report, error)
}

// SubmitFields is the public intake payload. Content is deliberately
// not validated beyond required presence: anonymous reporting should
// have as little schema friction as possible.
type SubmitFields struct {
	Type        string
	Location    string
	Date        string
	Time        string
	Description string
	Latitude    string
	Longitude   string
}

// UploadFile is one evidence file pending storage, in upload order.
type UploadFile struct {
	OriginalFilename string
	Data             io.Reader
}

type Report struct {
	storage ReportStorage
	blobs   blob.Store
}

func NewReport(storage ReportStorage, blobs blob.Store) *Report {
	return &Report{storage: storage, blobs: blobs}
}

// newReferenceNumber composes the public-facing incident identifier:
// CW- plus 4 random decimal digits. With only 9000 possible suffixes,
// collisions are expected well before 9000 reports (birthday bound:
// ~50% at roughly 112 reports) and are not checked against existing
// rows. The reference number is a human-friendly handle, not a key.
func newReferenceNumber() string {
	return fmt.Sprintf("CW-%d", 1000+rand.Intn(9000))
}

// parseCoordinate returns nil for absent or malformed input: a bad pin
// drops silently rather than failing the submission.
func parseCoordinate(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

// Submit stores the evidence files first and the report record second,
// so a crash in between orphans files but never produces a report that
// references missing evidence.
func (r *Report) Submit(ctx context.Context, fields SubmitFields, files []UploadFile) (string, error) {
	if fields.Type == "" {
		return "", &errors.ErrorWithStatusCode{Message: "Missing required field: type", StatusCode: http.StatusBadRequest}
	}
	if fields.Location == "" {
		return "", &errors.ErrorWithStatusCode{Message: "Missing required field: location", StatusCode: http.StatusBadRequest}
	}

	evidence := domain.Evidence{}
	for _, f := range files {
		name := blob.NewName(f.OriginalFilename)
		if err := r.blobs.Save(ctx, name, f.Data); err != nil {
			return "", fmt.Errorf("failed to store evidence file: %w", err)
		}
		evidence = append(evidence, name)
	}

	report := domain.Report{
		ReferenceNumber: newReferenceNumber(),
		Type:            fields.Type,
		Location:        fields.Location,
		Latitude:        parseCoordinate(fields.Latitude),
		Longitude:       parseCoordinate(fields.Longitude),
		Date:            fields.Date,
		Time:            fields.Time,
		Description:     fields.Description,
		Evidence:        evidence,
	}

	id, err := r.storage.CreateReport(report)
	if err != nil {
		return "", err
	}

	logger.Log.Info("report submitted", "id", id, "reference", report.ReferenceNumber, "evidence_files", len(evidence))
	return report.ReferenceNumber, nil
}

func (r *Report) Get(id domain.ReportId) (domain.Report, error) {
	return r.storage.Report(id)
}

func (r *Report) Search(query, typeFilter string) ([]domain.Report, error) {
	return r.storage.Reports(query, typeFilter)
}

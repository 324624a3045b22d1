package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/commwatch/commwatch/internal/domain"
	internal_errors "github.com/commwatch/commwatch/internal/errors"
)

const reportColumns = "id, reference_number, type, location, latitude, longitude, date, time, description, evidence, forward_history, created_at"

// CreateReport is the public entry point for persisting a new report.
// It wraps the insert in a transaction.
func (s *Storage) CreateReport(report domain.Report) (domain.ReportId, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var id domain.ReportId
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = s.createReport(tx, report)
		return err
	})
	return id, err
}

// createReport contains the core insert logic.
func (s *Storage) createReport(q Querier, report domain.Report) (domain.ReportId, error) {
	createdTs := time.Now().UTC().Round(time.Microsecond) // database rounds to microsecond anyway
	var id domain.ReportId
	err := q.QueryRow(`
	INSERT INTO reports(reference_number, type, location, latitude, longitude, date, time, description, evidence, created_at)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	RETURNING id`,
		report.ReferenceNumber, report.Type, report.Location, report.Latitude, report.Longitude,
		report.Date, report.Time, report.Description, report.Evidence, createdTs,
	).Scan(&id)
	if err != nil {
		return -1, fmt.Errorf("failed to insert report: %w", err)
	}
	return id, nil
}

// Report fetches a single report by id.
func (s *Storage) Report(id domain.ReportId) (domain.Report, error) {
	row := s.db.QueryRow("SELECT "+reportColumns+" FROM reports WHERE id = $1", id)
	report, err := scanReport(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Report{}, &internal_errors.ErrorWithStatusCode{Message: "Report not found", StatusCode: http.StatusNotFound}
		}
		return domain.Report{}, fmt.Errorf("failed to query report: %w", err)
	}
	return report, nil
}

// Reports returns reports matching the filters, newest first. An empty
// query matches everything; the substring match over description,
// location and reference number is case-insensitive; typeFilter is an
// exact match ANDed with the query.
func (s *Storage) Reports(query, typeFilter string) ([]domain.Report, error) {
	rows, err := s.db.Query(`
	SELECT `+reportColumns+`
	FROM reports
	WHERE ($1 = '' OR description ILIKE '%' || $1 || '%' OR location ILIKE '%' || $1 || '%' OR reference_number ILIKE '%' || $1 || '%')
	  AND ($2 = '' OR type = $2)
	ORDER BY created_at DESC, id DESC`,
		query, typeFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	return collectReports(rows)
}

// AllReports returns every report in insertion order, used by the
// statistics aggregator.
func (s *Storage) AllReports() ([]domain.Report, error) {
	rows, err := s.db.Query("SELECT " + reportColumns + " FROM reports ORDER BY id ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	return collectReports(rows)
}

// AppendForwardHistory appends one entry to the report's history as a
// single jsonb concatenation so concurrent appends on the same row
// never lose entries. A read-modify-write in application code would.
func (s *Storage) AppendForwardHistory(id domain.ReportId, entry domain.ForwardEntry) error {
	entryJSON, err := domain.ForwardHistory{entry}.Value()
	if err != nil {
		return fmt.Errorf("failed to encode history entry: %w", err)
	}

	result, err := s.db.Exec(
		"UPDATE reports SET forward_history = forward_history || $2::jsonb WHERE id = $1",
		id, entryJSON)
	if err != nil {
		return fmt.Errorf("failed to append forward history: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows for history append: %w", err)
	}
	if affected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Report not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (domain.Report, error) {
	var r domain.Report
	err := row.Scan(&r.Id, &r.ReferenceNumber, &r.Type, &r.Location, &r.Latitude, &r.Longitude,
		&r.Date, &r.Time, &r.Description, &r.Evidence, &r.ForwardHistory, &r.CreatedAt)
	return r, err
}

func collectReports(rows *sql.Rows) ([]domain.Report, error) {
	reports := []domain.Report{}
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reports: %w", err)
	}
	return reports, nil
}

package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type ReportId = int64

// Report is a single neighborhood-incident report. Evidence and
// ForwardHistory are stored as jsonb columns and always read/written
// whole, never queried by sub-field.
type Report struct {
	Id              ReportId       `json:"id"`
	ReferenceNumber string         `json:"referenceNumber"`
	Type            string         `json:"type"`
	Location        string         `json:"location"`
	Latitude        *float64       `json:"latitude"`
	Longitude       *float64       `json:"longitude"`
	Date            string         `json:"date"`
	Time            string         `json:"time"`
	Description     string         `json:"description"`
	Evidence        Evidence       `json:"evidence"`
	ForwardHistory  ForwardHistory `json:"forwardHistory"`
	CreatedAt       time.Time      `json:"createdAt"`
}

// Evidence is an ordered list of stored-file names, upload order preserved.
type Evidence []string

func (e Evidence) Value() (driver.Value, error) {
	if e == nil {
		e = Evidence{}
	}
	return json.Marshal(e)
}

func (e *Evidence) Scan(src interface{}) error {
	return scanJSON(src, e)
}

// ForwardEntry records one successful forward of a report to an email
// group. The group name is denormalized on purpose: history is a
// point-in-time snapshot, immune to later group renames.
type ForwardEntry struct {
	To     string    `json:"to"`
	SentAt time.Time `json:"sentAt"`
	SentBy string    `json:"sentBy"`
}

// ForwardHistory is append-only; entries are never rewritten or removed.
type ForwardHistory []ForwardEntry

func (h ForwardHistory) Value() (driver.Value, error) {
	if h == nil {
		h = ForwardHistory{}
	}
	return json.Marshal(h)
}

func (h *ForwardHistory) Scan(src interface{}) error {
	return scanJSON(src, h)
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported scan type %T", src)
	}
}

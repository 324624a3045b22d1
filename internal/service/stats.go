package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/commwatch/commwatch/internal/api"
	"github.com/commwatch/commwatch/internal/domain"
	"github.com/commwatch/commwatch/internal/logger"
)

type StatsService interface {
	PublicStats(now time.Time) (api.StatsResponse, error)
}

type StatsStorage interface {
	AllReports() ([]domain.Report, error)
}

type Stats struct {
	storage StatsStorage
}

func NewStats(storage StatsStorage) *Stats {
	return &Stats{storage: storage}
}

// titlePolicy strips any markup from report fields before they are
// exposed on the public stats endpoint.
var titlePolicy = bluemonday.StrictPolicy()

const recentLimit = 5

// PublicStats aggregates reports into the anonymous public view: a
// current-year total, a per-month histogram, a month-over-month trend
// and a short list of recent incidents. Nothing here exposes
// descriptions, exact addresses or reference numbers.
func (s *Stats) PublicStats(now time.Time) (api.StatsResponse, error) {
	reports, err := s.storage.AllReports()
	if err != nil {
		return api.StatsResponse{}, err
	}

	var counts [12]int
	year := now.Year()
	for _, r := range reports {
		date, ok := parseReportDate(r.Date)
		if !ok {
			logger.Log.Warn("skipping report with unparseable date in stats", "report_id", r.Id, "date", r.Date)
			continue
		}
		if date.Year() == year {
			counts[date.Month()-1]++
		}
	}

	byMonth := make([]api.MonthCount, 12)
	total := 0
	for i := 0; i < 12; i++ {
		byMonth[i] = api.MonthCount{Month: time.Month(i + 1).String()[:3], Count: counts[i]}
		total += counts[i]
	}

	resp := api.StatsResponse{
		Total:   total,
		ByMonth: byMonth,
		Trend:   trend(counts, now.Month()),
		Recent:  recentReports(reports),
	}
	return resp, nil
}

func parseReportDate(raw string) (time.Time, bool) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// trend is the month-over-month change in percent. A month with no
// predecessor activity but new reports counts as +100. January does
// not wrap into the previous year.
func trend(counts [12]int, month time.Month) int {
	curr := counts[month-1]
	prev := 0
	if month > time.January {
		prev = counts[month-2]
	}
	switch {
	case prev > 0:
		return int(math.Round(100 * float64(curr-prev) / float64(prev)))
	case curr > 0:
		return 100
	default:
		return 0
	}
}

// recentReports returns the newest reports first, titled coarsely
// enough ("Theft near Manor Lane") to be safe for the public page.
func recentReports(reports []domain.Report) []api.RecentReport {
	recent := make([]api.RecentReport, 0, recentLimit)
	for i := len(reports) - 1; i >= 0 && len(recent) < recentLimit; i-- {
		r := reports[i]
		recent = append(recent, api.RecentReport{
			Title: recentTitle(r),
			Date:  r.Date,
			Id:    r.Id,
		})
	}
	return recent
}

func recentTitle(r domain.Report) string {
	area := r.Location
	if i := strings.Index(area, ","); i >= 0 {
		area = area[:i]
	}
	title := fmt.Sprintf("%s near %s", capitalize(r.Type), strings.TrimSpace(area))
	return titlePolicy.Sanitize(title)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

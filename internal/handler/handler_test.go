package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/commwatch/commwatch/internal/api"
	"github.com/commwatch/commwatch/internal/config"
	"github.com/commwatch/commwatch/internal/domain"
	mw "github.com/commwatch/commwatch/internal/middleware"
	"github.com/commwatch/commwatch/internal/service"
)

// --- Mock services ---

type MockAuthService struct {
	MockLogin               func(username, password string) (string, string, error)
	MockCreateAdministrator func(username, password, role string) (domain.AdminId, error)
}

func (m *MockAuthService) Login(username, password string) (string, string, error) {
	if m.MockLogin != nil {
		return m.MockLogin(username, password)
	}
	return "test-token", domain.RoleAdmin, nil
}

func (m *MockAuthService) CreateAdministrator(username, password, role string) (domain.AdminId, error) {
	if m.MockCreateAdministrator != nil {
		return m.MockCreateAdministrator(username, password, role)
	}
	return 1, nil
}

func (m *MockAuthService) EnsureDefaultAdmin() error { return nil }

type MockReportService struct {
	MockSubmit func(ctx context.Context, fields service.SubmitFields, files []service.UploadFile) (string, error)
	MockGet    func(id domain.ReportId) (domain.Report, error)
	MockSearch func(query, typeFilter string) ([]domain.Report, error)
}

func (m *MockReportService) Submit(ctx context.Context, fields service.SubmitFields, files []service.UploadFile) (string, error) {
	if m.MockSubmit != nil {
		return m.MockSubmit(ctx, fields, files)
	}
	return "CW-1234", nil
}

func (m *MockReportService) Get(id domain.ReportId) (domain.Report, error) {
	if m.MockGet != nil {
		return m.MockGet(id)
	}
	return domain.Report{Id: id, ReferenceNumber: "CW-1234"}, nil
}

func (m *MockReportService) Search(query, typeFilter string) ([]domain.Report, error) {
	if m.MockSearch != nil {
		return m.MockSearch(query, typeFilter)
	}
	return nil, nil
}

type MockGroupService struct {
	MockList         func() ([]domain.EmailGroup, error)
	MockUpdateEmails func(id domain.GroupId, emails string) (domain.EmailGroup, error)
}

func (m *MockGroupService) List() ([]domain.EmailGroup, error) {
	if m.MockList != nil {
		return m.MockList()
	}
	return nil, nil
}

func (m *MockGroupService) UpdateEmails(id domain.GroupId, emails string) (domain.EmailGroup, error) {
	if m.MockUpdateEmails != nil {
		return m.MockUpdateEmails(id, emails)
	}
	return domain.EmailGroup{Id: id, Emails: emails}, nil
}

func (m *MockGroupService) EnsureDefaults() error { return nil }

type MockForwardService struct {
	MockForward func(ctx context.Context, id domain.ReportId, groupIds []domain.GroupId, sentBy string) (service.ForwardResult, error)
}

func (m *MockForwardService) Forward(ctx context.Context, id domain.ReportId, groupIds []domain.GroupId, sentBy string) (service.ForwardResult, error) {
	if m.MockForward != nil {
		return m.MockForward(ctx, id, groupIds, sentBy)
	}
	return service.ForwardResult{Sent: len(groupIds)}, nil
}

type MockStatsService struct {
	MockPublicStats func(now time.Time) (api.StatsResponse, error)
}

func (m *MockStatsService) PublicStats(now time.Time) (api.StatsResponse, error) {
	if m.MockPublicStats != nil {
		return m.MockPublicStats(now)
	}
	return api.StatsResponse{}, nil
}

type MockPinger struct {
	MockPing func(ctx context.Context) error
}

func (m *MockPinger) Ping(ctx context.Context) error {
	if m.MockPing != nil {
		return m.MockPing(ctx)
	}
	return nil
}

// --- Helpers ---

func newTestHandler() *Handler {
	cfg := &config.Config{}
	cfg.Public.MaxTotalAttachmentSize = 50 << 20
	return &Handler{
		auth:    &MockAuthService{},
		report:  &MockReportService{},
		group:   &MockGroupService{},
		forward: &MockForwardService{},
		stats:   &MockStatsService{},
		health:  &MockPinger{},
		cfg:     cfg,
	}
}

func createRequest(t *testing.T, method, url string, body []byte) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewBuffer(body))
	if err != nil {
		t.Fatal(err)
	}
	return req
}

// withClaims injects validated admin claims, standing in for the auth middleware.
func withClaims(req *http.Request, claims *domain.Claims) *http.Request {
	ctx := context.WithValue(req.Context(), mw.ClaimsKey, claims)
	return req.WithContext(ctx)
}

func serve(h http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// testRouter mounts the handler under the real route patterns so
// chi.URLParam works in tests.
func testRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/api/report", h.SubmitReport)
	r.Post("/api/login", h.Login)
	r.Get("/api/reports", h.SearchReports)
	r.Get("/api/report/{id}", h.GetReport)
	r.Post("/api/report/{id}/forward", h.ForwardReport)
	r.Get("/api/email-groups", h.GetEmailGroups)
	r.Put("/api/email-groups/{id}", h.UpdateEmailGroup)
	r.Post("/api/users", h.CreateUser)
	r.Get("/api/stats", h.Stats)
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	return r
}

func serveRoute(r *chi.Mux, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

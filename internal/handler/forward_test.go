package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commwatch/commwatch/internal/api"
	"github.com/commwatch/commwatch/internal/domain"
	internal_errors "github.com/commwatch/commwatch/internal/errors"
	"github.com/commwatch/commwatch/internal/service"
)

func TestForwardReportHandler(t *testing.T) {
	h := newTestHandler()
	claims := &domain.Claims{UserId: 1, Username: "admin", Role: domain.RoleSuperadmin}
	requestBody := []byte(`{"groupIds": [1, 2]}`)

	t.Run("successful request", func(t *testing.T) {
		sentAt := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
		h.forward = &MockForwardService{
			MockForward: func(ctx context.Context, id domain.ReportId, groupIds []domain.GroupId, sentBy string) (service.ForwardResult, error) {
				assert.Equal(t, domain.ReportId(42), id)
				assert.Equal(t, []domain.GroupId{1, 2}, groupIds)
				assert.Equal(t, "admin", sentBy)
				return service.ForwardResult{
					History: domain.ForwardHistory{{To: "St Mungos Team", SentAt: sentAt, SentBy: "admin"}},
					Sent:    2,
				}, nil
			},
		}

		req := withClaims(createRequest(t, http.MethodPost, "/api/report/42/forward", requestBody), claims)
		rr := serveRoute(testRouter(h), req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp api.ForwardReportResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Report forwarded successfully", resp.Message)
		require.Len(t, resp.History, 1)
		assert.Equal(t, "St Mungos Team", resp.History[0].To)
	})

	t.Run("partial failure changes the message", func(t *testing.T) {
		h.forward = &MockForwardService{
			MockForward: func(ctx context.Context, id domain.ReportId, groupIds []domain.GroupId, sentBy string) (service.ForwardResult, error) {
				return service.ForwardResult{History: domain.ForwardHistory{}, Sent: 1, Failed: 1}, nil
			},
		}

		req := withClaims(createRequest(t, http.MethodPost, "/api/report/42/forward", requestBody), claims)
		rr := serveRoute(testRouter(h), req)

		require.Equal(t, http.StatusOK, rr.Code)
		var resp api.ForwardReportResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "Report forwarded to 1 of 2 groups", resp.Message)
	})

	t.Run("missing claims", func(t *testing.T) {
		rr := serveRoute(testRouter(h), createRequest(t, http.MethodPost, "/api/report/42/forward", requestBody))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing groupIds", func(t *testing.T) {
		req := withClaims(createRequest(t, http.MethodPost, "/api/report/42/forward", []byte(`{}`)), claims)
		rr := serveRoute(testRouter(h), req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("report not found", func(t *testing.T) {
		h.forward = &MockForwardService{
			MockForward: func(ctx context.Context, id domain.ReportId, groupIds []domain.GroupId, sentBy string) (service.ForwardResult, error) {
				return service.ForwardResult{}, &internal_errors.ErrorWithStatusCode{Message: "Report not found", StatusCode: http.StatusNotFound}
			},
		}

		req := withClaims(createRequest(t, http.MethodPost, "/api/report/999/forward", requestBody), claims)
		rr := serveRoute(testRouter(h), req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

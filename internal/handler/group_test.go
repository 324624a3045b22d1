package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commwatch/commwatch/internal/domain"
	internal_errors "github.com/commwatch/commwatch/internal/errors"
)

func TestGetEmailGroupsHandler(t *testing.T) {
	h := newTestHandler()

	t.Run("successful request", func(t *testing.T) {
		h.group = &MockGroupService{
			MockList: func() ([]domain.EmailGroup, error) {
				return []domain.EmailGroup{
					{Id: 1, Name: "St Mungos Team", Emails: "a@x.org"},
					{Id: 2, Name: "Safer Neighborhoods", Emails: "b@y.org, c@y.org"},
				}, nil
			},
		}

		rr := serveRoute(testRouter(h), createRequest(t, http.MethodGet, "/api/email-groups", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp []domain.EmailGroup
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
		assert.Equal(t, "St Mungos Team", resp[0].Name)
	})

	t.Run("empty registry is an array", func(t *testing.T) {
		h.group = &MockGroupService{}

		rr := serveRoute(testRouter(h), createRequest(t, http.MethodGet, "/api/email-groups", nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `[]`, rr.Body.String())
	})
}

func TestUpdateEmailGroupHandler(t *testing.T) {
	h := newTestHandler()

	t.Run("successful request", func(t *testing.T) {
		h.group = &MockGroupService{
			MockUpdateEmails: func(id domain.GroupId, emails string) (domain.EmailGroup, error) {
				assert.Equal(t, domain.GroupId(3), id)
				return domain.EmailGroup{Id: id, Name: "Team", Emails: emails}, nil
			},
		}

		body := []byte(`{"emails": "new@x.org, other@y.org"}`)
		rr := serveRoute(testRouter(h), createRequest(t, http.MethodPut, "/api/email-groups/3", body))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp domain.EmailGroup
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "new@x.org, other@y.org", resp.Emails)
	})

	t.Run("invalid id", func(t *testing.T) {
		rr := serveRoute(testRouter(h), createRequest(t, http.MethodPut, "/api/email-groups/abc", []byte(`{"emails": "a@x.org"}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing emails field", func(t *testing.T) {
		rr := serveRoute(testRouter(h), createRequest(t, http.MethodPut, "/api/email-groups/3", []byte(`{}`)))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("group not found", func(t *testing.T) {
		h.group = &MockGroupService{
			MockUpdateEmails: func(id domain.GroupId, emails string) (domain.EmailGroup, error) {
				return domain.EmailGroup{}, &internal_errors.ErrorWithStatusCode{Message: "Group not found", StatusCode: http.StatusNotFound}
			},
		}

		rr := serveRoute(testRouter(h), createRequest(t, http.MethodPut, "/api/email-groups/99", []byte(`{"emails": "a@x.org"}`)))

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yanryp/servicedesk-sub004/internal/api/dto"
	"github.com/yanryp/servicedesk-sub004/internal/config"
	"github.com/yanryp/servicedesk-sub004/internal/domain"
	apperrors "github.com/yanryp/servicedesk-sub004/pkg/util/errorutil"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(config.ClientConfig{BaseURL: srv.URL + "/", TimeoutSeconds: 2}, zap.NewNop()).WithToken("tok")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, v any) {
	writeJSON(w, status, map[string]any{"data": v})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorEnvelope{Error: dto.ErrorBody{Code: code, Message: message}})
}

func TestFieldsDecodesSchema(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/templates/tpl-1/fields", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeData(w, http.StatusOK, dto.FieldsResponse{
			TemplateID: "tpl-1",
			Fields: []dto.FieldDefinition{
				{ID: "f1", Name: "unit_kerja", Label: "Unit Kerja", Type: domain.FieldTypeDropdown, Required: true},
			},
		})
	}))

	defs, err := c.Fields(context.Background(), "tpl-1")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "tpl-1", defs[0].TemplateID)
	assert.Equal(t, domain.FieldTypeDropdown, defs[0].Type)
}

func TestFieldsFailureIsSchemaLoadError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, apperrors.CodeNotFound, "template not found")
	}))

	_, err := c.Fields(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeSchemaLoad))
}

func TestCreateTicketSendsWirePayload(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/tickets", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeData(w, http.StatusCreated, dto.CreateTicketResponse{TicketID: "t-42", Status: domain.TicketStatusOpen})
	}))

	item := "item-1"
	id, err := c.CreateTicket(context.Background(), domain.TicketSubmission{
		TemplateID:        "tpl-1",
		ItemID:            &item,
		Title:             "ATM down",
		Description:       "Machine shows error 42",
		Priority:          domain.TicketPriorityHigh,
		RootCause:         domain.RootCauseSystemError,
		CustomFieldValues: []domain.CustomFieldValue{{FieldID: "f1", FieldName: "symptoms", Value: "a,b"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "t-42", id)

	assert.Equal(t, "tpl-1", got["templateId"])
	assert.Equal(t, "item-1", got["itemId"])
	assert.Equal(t, "system_error", got["rootCause"])
	assert.NotContains(t, got, "serviceId")
	values := got["customFieldValues"].([]any)
	require.Len(t, values, 1)
	assert.Equal(t, "a,b", values[0].(map[string]any)["value"])
}

func TestServerMessageSurfacesAsTransportError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusInternalServerError, apperrors.CodeInternal, "database unavailable")
	}))

	_, err := c.CreateTicket(context.Background(), domain.TicketSubmission{TemplateID: "tpl-1"})
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, apperrors.CodeTransport, domainErr.Code)
	assert.Equal(t, "database unavailable", domainErr.Message)
	assert.Equal(t, http.StatusInternalServerError, domainErr.Details["upstream_status"])
}

func TestNonEnvelopeErrorUsesStatusText(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("<html>down</html>"))
	}))

	_, err := c.Options(context.Background(), "branch")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeTransport))
	assert.Contains(t, err.Error(), http.StatusText(http.StatusServiceUnavailable))
}

func TestSubmitApprovalDuplicate(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/tickets/t-1/approval", r.URL.Path)
		writeError(w, http.StatusConflict, apperrors.CodeDuplicateAction, "ticket already decided")
	}))

	_, err := c.SubmitApproval(context.Background(), "t-1", domain.ApprovalActionApprove, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeDuplicateAction))
}

func TestSubmitApprovalValidation(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusBadRequest, apperrors.CodeValidation, "Comments are required when rejecting a ticket")
	}))

	_, err := c.SubmitApproval(context.Background(), "t-1", domain.ApprovalActionReject, "")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	assert.Equal(t, "Comments are required when rejecting a ticket", err.Error())
}

func TestSubmitApprovalReturnsTicket(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req dto.ApprovalRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, domain.ApprovalActionReject, req.Action)
		writeData(w, http.StatusOK, dto.TicketResponse{
			ID:       "t-1",
			Status:   domain.TicketStatusClosed,
			Approval: &dto.ApprovalResponse{Action: req.Action, Comment: req.Comment, DecidedBy: "m-1"},
		})
	}))

	ticket, err := c.SubmitApproval(context.Background(), "t-1", domain.ApprovalActionReject, "out of policy")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, ticket.Status)
	require.NotNil(t, ticket.Approval)
	assert.Equal(t, "out of policy", ticket.Approval.Comment)
}

func TestCurrentUser(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/me", r.URL.Path)
		writeData(w, http.StatusOK, dto.ProfileResponse{
			ID:         "u-1",
			Role:       domain.UserRoleRequester,
			Department: &dto.DepartmentResponse{ID: "d-1", Name: "Kantor Cabang Utama"},
		})
	}))

	user, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Kantor Cabang Utama", user.DepartmentName())
}

func TestMissingDataIsTransportError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"unexpected": true})
	}))

	_, err := c.Template(context.Background(), "tpl-1")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeTransport))
}

func TestCancelledContext(t *testing.T) {
	c := New(config.ClientConfig{BaseURL: "http://127.0.0.1:1"}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Template(ctx, "tpl-1")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeTransport))
}

package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/handler/mocks"
	"github.com/marcelarangelrhellorh/rhelloflow/internal/deletion/service"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/domain"
	dErrors "github.com/marcelarangelrhellorh/rhelloflow/pkg/domain-errors"
	"github.com/marcelarangelrhellorh/rhelloflow/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/service-mocks.go -package=mocks Service

func newMockRouter(t *testing.T) (chi.Router, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockService := mocks.NewMockService(ctrl)
	r := chi.NewRouter()
	New(mockService, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r, mockService
}

// Failures below the store layer must not leak internals; each error code has
// a fixed HTTP translation.
func TestSoftDelete_InfrastructureErrorTranslation(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "snapshot store down",
			err:        dErrors.New(dErrors.CodeUnavailable, "snapshot capture failed"),
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "unavailable",
		},
		{
			name:       "store timeout",
			err:        dErrors.New(dErrors.CodeTimeout, "deletion timed out"),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   "timeout",
		},
		{
			name:       "unclassified error",
			err:        errors.New("pq: connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router, mockService := newMockRouter(t)
			mockService.EXPECT().
				SoftDelete(gomock.Any(), gomock.Any(), gomock.Any()).
				Return(nil, tc.err)

			req := testutil.NewJSONRequest(t, http.MethodDelete, "/resources/job/J1",
				map[string]string{"reason": "cleanup"})
			req = testutil.WithAdmin(req, "admin-1")

			rr := testutil.DoRequest(router, req)
			testutil.AssertStatusAndError(t, rr, tc.wantStatus, tc.wantCode)
		})
	}
}

// Unclassified errors keep their detail out of the response body.
func TestSoftDelete_InternalErrorOmitsDetail(t *testing.T) {
	router, mockService := newMockRouter(t)
	mockService.EXPECT().
		SoftDelete(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("dial tcp 10.0.0.5:5432: connect: connection refused"))

	req := testutil.NewJSONRequest(t, http.MethodDelete, "/resources/job/J1",
		map[string]string{"reason": "cleanup"})
	req = testutil.WithAdmin(req, "admin-1")

	rr := testutil.DoRequest(router, req)
	assert.NotContains(t, rr.Body.String(), "10.0.0.5")
}

// The handler passes the context actor through unchanged; it never
// substitutes or augments identity on its own.
func TestSoftDelete_ForwardsContextActor(t *testing.T) {
	router, mockService := newMockRouter(t)

	var seen domain.Actor
	mockService.EXPECT().
		SoftDelete(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, actor domain.Actor, req service.SoftDeleteRequest) (*service.DeleteResult, error) {
			seen = actor
			return &service.DeleteResult{
				Resource:      req.Resource,
				RiskLevel:     "medium",
				CorrelationID: domain.NewCorrelationID(),
			}, nil
		})

	req := testutil.NewJSONRequest(t, http.MethodDelete, "/resources/candidate/C1",
		map[string]string{"reason": "cleanup"})
	req = testutil.WithAdmin(req, "admin-42")

	rr := testutil.DoRequest(router, req)
	testutil.AssertStatusOK(t, rr)
	assert.Equal(t, "admin-42", seen.ID)
	assert.True(t, seen.IsAdmin())
}

func TestGetApproval_NotFoundTranslation(t *testing.T) {
	router, mockService := newMockRouter(t)
	id := domain.NewApprovalID()
	mockService.EXPECT().
		GetApproval(gomock.Any(), id).
		Return(nil, dErrors.New(dErrors.CodeNotFound, "approval not found"))

	req := testutil.NewRequest(t, http.MethodGet, "/deletion-approvals/"+id.String())
	rr := testutil.DoRequest(router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}

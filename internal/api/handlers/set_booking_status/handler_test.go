package set_booking_status

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/HospitalBookingService/internal/service/bookings"
	"github.com/m04kA/HospitalBookingService/pkg/logger"
)

type fakeService struct {
	reference string
	status    string
	err       error
}

func (f *fakeService) SetStatus(ctx context.Context, reference string, status string) error {
	f.reference = reference
	f.status = status
	return f.err
}

func serve(svc *fakeService, body string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/admin/bookings/{referenceNumber}/status",
		NewHandler(svc, logger.Nop()).Handle).Methods(http.MethodPatch)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPatch,
		"/api/v1/admin/bookings/BK2026-00042/status", strings.NewReader(body)))
	return w
}

func TestHandle(t *testing.T) {
	svc := &fakeService{}

	w := serve(svc, `{"status":"cancelled"}`)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "BK2026-00042", svc.reference)
	assert.Equal(t, "cancelled", svc.status)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"unknown status", `{"status":"archived"}`, nil, http.StatusBadRequest},
		{"missing status", `{}`, nil, http.StatusBadRequest},
		{"extra field", `{"status":"confirmed","seats":1}`, nil, http.StatusBadRequest},
		{"not found", `{"status":"confirmed"}`, bookings.ErrBookingNotFound, http.StatusNotFound},
		{"internal", `{"status":"confirmed"}`, bookings.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{err: tt.err}
			w := serve(svc, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

package reserve_slot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HospitalBookingService/internal/api/middleware"
	reserveSlot "github.com/m04kA/HospitalBookingService/internal/usecase/reserve_slot"
	"github.com/m04kA/HospitalBookingService/pkg/logger"
	"github.com/m04kA/HospitalBookingService/pkg/ptr"
	"github.com/m04kA/HospitalBookingService/pkg/types"
)

const citizen = "1101700230708"

type fakeUseCase struct {
	got *reserveSlot.Request
	err error
}

func (f *fakeUseCase) Execute(ctx context.Context, req *reserveSlot.Request) (*reserveSlot.Response, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	start, _ := types.NewTimeStringFromString("09:00")
	end, _ := types.NewTimeStringFromString("09:30")
	return &reserveSlot.Response{
		BookingID:       1,
		ReferenceNumber: "BK2026-00001",
		Status:          "pending",
		SlotID:          req.SlotID,
		DepartmentID:    req.DepartmentID,
		SlotDate:        time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC),
		StartTime:       start,
		EndTime:         end,
		PatientName:     req.PatientName,
		Phone:           req.Phone,
		CitizenID:       req.CitizenID,
		CreatedAt:       time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC),
	}, nil
}

func doRequest(h *Handler, body string, ctx context.Context) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", strings.NewReader(body)).WithContext(ctx)
	w := httptest.NewRecorder()
	h.Handle(w, r)
	return w
}

const validBody = `{"departmentId":1,"slotId":10,"patientName":"Somchai","phone":"0812345678"}`

func TestHandle_Created(t *testing.T) {
	uc := &fakeUseCase{}
	h := NewHandler(uc, logger.Nop())

	w := doRequest(h, validBody, context.Background())
	require.Equal(t, http.StatusCreated, w.Code)

	var resp BookingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "BK2026-00001", resp.ReferenceNumber)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "2026-10-20", resp.SlotDate)
	assert.Equal(t, "09:00", resp.StartTime)
	assert.Nil(t, uc.got.CitizenID)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", fmt.Errorf("%w: Phone is not a valid phone number", reserveSlot.ErrInvalidInput), http.StatusBadRequest},
		{"department", reserveSlot.ErrDepartmentNotFound, http.StatusNotFound},
		{"slot", reserveSlot.ErrSlotNotFound, http.StatusNotFound},
		{"full", reserveSlot.ErrCapacityExhausted, http.StatusConflict},
		{"retryable", fmt.Errorf("%w: lock slot: timeout", reserveSlot.ErrRetryable), http.StatusServiceUnavailable},
		{"internal", reserveSlot.ErrInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(&fakeUseCase{err: tt.err}, logger.Nop())
			w := doRequest(h, validBody, context.Background())
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestHandle_ValidationMessage(t *testing.T) {
	h := NewHandler(&fakeUseCase{err: fmt.Errorf("%w: Phone is not a valid phone number", reserveSlot.ErrInvalidInput)}, logger.Nop())
	w := doRequest(h, validBody, context.Background())
	assert.JSONEq(t, `{"error":"Phone is not a valid phone number"}`, w.Body.String())
}

func TestHandle_RejectsUnknownFields(t *testing.T) {
	uc := &fakeUseCase{}
	h := NewHandler(uc, logger.Nop())

	w := doRequest(h, `{"departmentId":1,"slotId":10,"patientName":"A","phone":"0812345678","status":"confirmed"}`, context.Background())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, uc.got)
}

func TestHandle_Identity(t *testing.T) {
	patient := middleware.WithIdentity(context.Background(), citizen, middleware.RolePatient)
	admin := middleware.WithIdentity(context.Background(), "admin-1", middleware.RoleAdmin)
	withCitizen := func(id string) string {
		return fmt.Sprintf(`{"departmentId":1,"slotId":10,"patientName":"Somchai","phone":"0812345678","citizenId":%q}`, id)
	}

	tests := []struct {
		name        string
		ctx         context.Context
		body        string
		wantStatus  int
		wantCitizen *string
	}{
		{"patient without body id", patient, validBody, http.StatusCreated, ptr.Ptr(citizen)},
		{"patient with own id", patient, withCitizen(citizen), http.StatusCreated, ptr.Ptr(citizen)},
		{"patient with foreign id", patient, withCitizen("1234567890121"), http.StatusBadRequest, nil},
		{"admin on behalf", admin, withCitizen("1234567890121"), http.StatusCreated, ptr.Ptr("1234567890121")},
		{"admin walk-in", admin, validBody, http.StatusCreated, nil},
		{"anonymous with id", context.Background(), withCitizen(citizen), http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeUseCase{}
			h := NewHandler(uc, logger.Nop())

			w := doRequest(h, tt.body, tt.ctx)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusCreated {
				assert.Nil(t, uc.got)
				return
			}
			assert.Equal(t, tt.wantCitizen, uc.got.CitizenID)
		})
	}
}

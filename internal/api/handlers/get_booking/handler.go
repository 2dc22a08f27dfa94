package get_booking

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/HospitalBookingService/internal/api/handlers"
	"github.com/m04kA/HospitalBookingService/internal/api/middleware"
	"github.com/m04kA/HospitalBookingService/internal/service/bookings"
	"github.com/m04kA/HospitalBookingService/internal/service/bookings/models"
)

const (
	msgInvalidReference = "некорректный номер бронирования"
	msgNotFound         = "бронирование не найдено"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/{referenceNumber}?phone=
// Анонимный пациент подтверждает доступ телефоном, указанным при записи
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	reference := mux.Vars(r)["referenceNumber"]

	caller := models.Caller{
		IsAdmin: middleware.IsAdmin(r.Context()),
		Phone:   r.URL.Query().Get("phone"),
	}
	if userID, ok := middleware.GetUserID(r.Context()); ok {
		caller.CitizenID = userID
	}

	booking, err := h.service.GetByReference(r.Context(), reference, caller)
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			handlers.RespondBadRequest(w, msgInvalidReference)

		case errors.Is(err, bookings.ErrBookingNotFound):
			handlers.RespondNotFound(w, msgNotFound)

		// Чужое бронирование неотличимо от отсутствующего: номера последовательные
		case errors.Is(err, bookings.ErrAccessDenied):
			h.logger.Warn("GET /bookings/{ref} - Access denied: reference=%s", reference)
			handlers.RespondNotFound(w, msgNotFound)

		default:
			h.logger.Error("GET /bookings/{ref} - Failed to get booking: reference=%s, error=%v", reference, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	handlers.RespondJSON(w, http.StatusOK, booking)
}

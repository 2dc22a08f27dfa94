package get_my_bookings

import (
	"errors"
	"net/http"

	"github.com/m04kA/HospitalBookingService/internal/api/handlers"
	"github.com/m04kA/HospitalBookingService/internal/api/middleware"
	"github.com/m04kA/HospitalBookingService/internal/service/bookings"
)

const (
	msgUnauthorized      = "требуется аутентификация"
	msgNotCitizenSession = "список доступен только пациентам"
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

// Handle GET /api/v1/me/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	citizenID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	result, err := h.service.ListByCitizen(r.Context(), citizenID)
	if err != nil {
		if errors.Is(err, bookings.ErrInvalidInput) {
			handlers.RespondBadRequest(w, msgNotCitizenSession)
			return
		}
		h.logger.Error("GET /me/bookings - Failed to get bookings: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /me/bookings - Found %d bookings", len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}

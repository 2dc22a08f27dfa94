package reserve_slot

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/m04kA/HospitalBookingService/internal/api/handlers"
	"github.com/m04kA/HospitalBookingService/internal/api/middleware"
	reserveSlot "github.com/m04kA/HospitalBookingService/internal/usecase/reserve_slot"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные данные бронирования"
	msgCitizenIDMismatch  = "citizenId не совпадает с пользователем сессии"
	msgCitizenIDAnonymous = "citizenId можно указать только после входа в систему"
	msgDepartmentNotFound = "отделение не найдено"
	msgSlotNotFound       = "слот не найден в указанном отделении"
	msgNoSeatsLeft        = "в выбранном слоте не осталось мест"
)

var (
	errCitizenIDMismatch  = errors.New("citizenId does not match session")
	errCitizenIDAnonymous = errors.New("citizenId requires a session")
)

type Handler struct {
	useCase ReserveSlotUseCase
	logger  Logger
}

func NewHandler(useCase ReserveSlotUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req ReserveRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	citizenID, err := resolveCitizenID(r.Context(), req.CitizenID)
	if err != nil {
		h.logger.Warn("POST /bookings - Identity rejected: %v", err)
		if errors.Is(err, errCitizenIDMismatch) {
			handlers.RespondBadRequest(w, msgCitizenIDMismatch)
		} else {
			handlers.RespondBadRequest(w, msgCitizenIDAnonymous)
		}
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(citizenID))
	if err != nil {
		switch {
		case errors.Is(err, reserveSlot.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Validation failed: %v", err)
			handlers.RespondBadRequest(w, validationMessage(err))

		case errors.Is(err, reserveSlot.ErrDepartmentNotFound):
			handlers.RespondNotFound(w, msgDepartmentNotFound)

		case errors.Is(err, reserveSlot.ErrSlotNotFound):
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, reserveSlot.ErrCapacityExhausted):
			h.logger.Warn("POST /bookings - No seats left: slot_id=%d", req.SlotID)
			handlers.RespondConflict(w, msgNoSeatsLeft)

		case errors.Is(err, reserveSlot.ErrRetryable):
			h.logger.Warn("POST /bookings - Temporary failure: slot_id=%d, error=%v", req.SlotID, err)
			handlers.RespondServiceUnavailable(w)

		default:
			h.logger.Error("POST /bookings - Failed to reserve: slot_id=%d, error=%v", req.SlotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings - Booking created: reference=%s, slot_id=%d, request_id=%s",
		result.ReferenceNumber, result.SlotID, middleware.GetRequestID(r.Context()))
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}

// resolveCitizenID определяет автора бронирования.
// Пациент бронирует только на себя, администратор может указать любого гражданина,
// анонимный запрос citizenId не передаёт.
func resolveCitizenID(ctx context.Context, fromBody *string) (*string, error) {
	var body string
	if fromBody != nil {
		body = strings.TrimSpace(*fromBody)
	}

	userID, authenticated := middleware.GetUserID(ctx)
	switch {
	case !authenticated:
		if body != "" {
			return nil, errCitizenIDAnonymous
		}
		return nil, nil

	case middleware.IsAdmin(ctx):
		if body == "" {
			return nil, nil
		}
		return &body, nil

	default:
		if body != "" && body != userID {
			return nil, errCitizenIDMismatch
		}
		return &userID, nil
	}
}

// validationMessage отдаёт клиенту описание нарушения без префикса sentinel ошибки
func validationMessage(err error) string {
	msg := strings.TrimPrefix(err.Error(), reserveSlot.ErrInvalidInput.Error()+": ")
	if msg == "" || msg == err.Error() {
		return msgInvalidInput
	}
	return msg
}

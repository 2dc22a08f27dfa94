package list_bookings

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/m04kA/HospitalBookingService/internal/api/handlers"
	"github.com/m04kA/HospitalBookingService/internal/domain"
	"github.com/m04kA/HospitalBookingService/internal/service/bookings"
	"github.com/m04kA/HospitalBookingService/internal/service/bookings/models"
)

const (
	msgInvalidDepartmentID = "некорректный ID отделения"
	msgInvalidDate         = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidStatus       = "некорректный статус бронирования"
	msgInvalidUnreadOnly   = "параметр unreadOnly должен быть true или false"
	msgInvalidPagination   = "некорректные параметры пагинации"
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

// Handle GET /api/v1/admin/bookings?departmentId=&date=&status=&unreadOnly=&limit=&offset=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	req, msg := parseQuery(r)
	if msg != "" {
		h.logger.Warn("GET /admin/bookings - Invalid query: %s", r.URL.RawQuery)
		handlers.RespondBadRequest(w, msg)
		return
	}

	result, err := h.service.ListForAdmin(r.Context(), req)
	if err != nil {
		if errors.Is(err, bookings.ErrInvalidInput) {
			handlers.RespondBadRequest(w, msgInvalidStatus)
			return
		}
		h.logger.Error("GET /admin/bookings - Failed to list bookings: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// parseQuery возвращает сообщение об ошибке для клиента, если параметр некорректен
func parseQuery(r *http.Request) (*models.ListForAdminRequest, string) {
	q := r.URL.Query()
	req := &models.ListForAdminRequest{}

	if raw := q.Get("departmentId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return nil, msgInvalidDepartmentID
		}
		req.DepartmentID = &id
	}

	if raw := q.Get("date"); raw != "" {
		date, err := time.Parse(domain.DateFormat, raw)
		if err != nil {
			return nil, msgInvalidDate
		}
		req.Date = &date
	}

	if raw := q.Get("status"); raw != "" {
		req.Status = &raw
	}

	if raw := q.Get("unreadOnly"); raw != "" {
		unread, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, msgInvalidUnreadOnly
		}
		req.UnreadOnly = unread
	}

	for key, dst := range map[string]*uint64{"limit": &req.Limit, "offset": &req.Offset} {
		if raw := q.Get(key); raw != "" {
			v, err := strconv.ParseUint(raw, 10, 64)
			if err != nil {
				return nil, msgInvalidPagination
			}
			*dst = v
		}
	}

	return req, ""
}

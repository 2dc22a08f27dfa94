package get_my_bookings

import (
	"context"

	"github.com/m04kA/HospitalBookingService/internal/service/bookings/models"
)

type BookingService interface {
	ListByCitizen(ctx context.Context, citizenID string) (*models.BookingListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

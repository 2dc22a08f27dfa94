package count_unread_bookings

import (
	"context"

	"github.com/m04kA/HospitalBookingService/internal/service/bookings/models"
)

type BookingService interface {
	CountUnread(ctx context.Context) (*models.UnreadCountResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

package bookings

import (
	"context"

	"github.com/m04kA/HospitalBookingService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByReference(ctx context.Context, reference string) (*domain.Booking, error)
	ListByCitizen(ctx context.Context, citizenID string) ([]*domain.Booking, error)
	ListWithFilter(ctx context.Context, filter domain.BookingsFilter) ([]*domain.Booking, error)
	UpdateStatusByReference(ctx context.Context, reference string, status domain.BookingStatus) error
	MarkReadByReference(ctx context.Context, reference string) error
	CountUnread(ctx context.Context) (int, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

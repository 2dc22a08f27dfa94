package slots

import (
	"context"
	"time"

	"github.com/m04kA/HospitalBookingService/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error)
	GetByIDForUpdate(ctx context.Context, id int64) (*domain.Slot, error)
	ListByDepartment(ctx context.Context, departmentID int64, date *time.Time) ([]*domain.Slot, error)
	UpdateCapacity(ctx context.Context, id int64, totalSeats, availableSeats int) error
}

// DepartmentRepository интерфейс репозитория отделений
type DepartmentRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Department, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

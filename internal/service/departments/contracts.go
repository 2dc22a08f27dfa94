package departments

import (
	"context"

	"github.com/m04kA/HospitalBookingService/internal/domain"
)

// DepartmentRepository интерфейс репозитория отделений
type DepartmentRepository interface {
	Create(ctx context.Context, department *domain.Department) (*domain.Department, error)
	GetByID(ctx context.Context, id int64) (*domain.Department, error)
	List(ctx context.Context) ([]*domain.Department, error)
	UpdateName(ctx context.Context, id int64, name string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

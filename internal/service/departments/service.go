package departments

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/HospitalBookingService/internal/domain"
	departmentRepo "github.com/m04kA/HospitalBookingService/internal/infra/storage/department"
	"github.com/m04kA/HospitalBookingService/internal/service/departments/models"
	"github.com/m04kA/HospitalBookingService/pkg/validation"
)

// Service сервис справочника отделений
type Service struct {
	departmentRepo DepartmentRepository
	logger         Logger
}

// NewService создает новый экземпляр сервиса отделений
func NewService(departmentRepo DepartmentRepository, logger Logger) *Service {
	return &Service{
		departmentRepo: departmentRepo,
		logger:         logger,
	}
}

// Create создает отделение с уникальным названием
func (s *Service) Create(ctx context.Context, req *models.DepartmentRequest) (*models.DepartmentResponse, error) {
	name, err := normalizeName(req)
	if err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	created, err := s.departmentRepo.Create(ctx, &domain.Department{Name: name})
	if err != nil {
		if errors.Is(err, departmentRepo.ErrDuplicateName) {
			s.logger.Warn("Create: department %q already exists", name)
			return nil, ErrDepartmentExists
		}
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: created department id=%d name=%q", created.ID, created.Name)
	return models.FromDomainDepartment(created), nil
}

// List все отделения по алфавиту
func (s *Service) List(ctx context.Context) (*models.DepartmentListResponse, error) {
	departments, err := s.departmentRepo.List(ctx)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainDepartmentList(departments), nil
}

// GetByID получает отделение по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.DepartmentResponse, error) {
	department, err := s.departmentRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, departmentRepo.ErrDepartmentNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("GetByID: repository error for department id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}
	return models.FromDomainDepartment(department), nil
}

// Rename переименовывает отделение
func (s *Service) Rename(ctx context.Context, id int64, req *models.DepartmentRequest) (*models.DepartmentResponse, error) {
	name, err := normalizeName(req)
	if err != nil {
		s.logger.Warn("Rename: validation failed: %v", err)
		return nil, err
	}

	if err := s.departmentRepo.UpdateName(ctx, id, name); err != nil {
		switch {
		case errors.Is(err, departmentRepo.ErrDepartmentNotFound):
			s.logger.Warn("Rename: department id=%d not found", id)
			return nil, ErrDepartmentNotFound
		case errors.Is(err, departmentRepo.ErrDuplicateName):
			s.logger.Warn("Rename: department %q already exists", name)
			return nil, ErrDepartmentExists
		default:
			s.logger.Error("Rename: repository error for department id=%d: %v", id, err)
			return nil, fmt.Errorf("%w: Rename - repository error: %v", ErrInternal, err)
		}
	}

	s.logger.Info("Rename: department id=%d renamed to %q", id, name)
	return s.GetByID(ctx, id)
}

func normalizeName(req *models.DepartmentRequest) (string, error) {
	if req == nil {
		return "", fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len([]rune(req.Name)) > domain.MaxDepartmentNameLength {
		return "", fmt.Errorf("%w: name must be at most %d characters", ErrInvalidInput, domain.MaxDepartmentNameLength)
	}
	return req.Name, nil
}

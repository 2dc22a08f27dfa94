package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/HospitalBookingService/internal/domain"
	departmentRepo "github.com/m04kA/HospitalBookingService/internal/infra/storage/department"
	slotRepo "github.com/m04kA/HospitalBookingService/internal/infra/storage/slot"
	"github.com/m04kA/HospitalBookingService/internal/service/slots/models"
	"github.com/m04kA/HospitalBookingService/pkg/types"
	"github.com/m04kA/HospitalBookingService/pkg/validation"
)

// Service сервис публикации слотов и просмотра доступности
type Service struct {
	slotRepo       SlotRepository
	departmentRepo DepartmentRepository
	txManager      TransactionManager
	timeProvider   TimeProvider
	logger         Logger
}

// NewService создает новый экземпляр сервиса слотов
func NewService(
	slotRepo SlotRepository,
	departmentRepo DepartmentRepository,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		slotRepo:       slotRepo,
		departmentRepo: departmentRepo,
		txManager:      txManager,
		timeProvider:   timeProvider,
		logger:         logger,
	}
}

// Create публикует слот; все места изначально свободны
func (s *Service) Create(ctx context.Context, req *models.CreateSlotRequest) (*models.SlotResponse, error) {
	slot, err := s.parseCreateRequest(req)
	if err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	s.logger.Info("Create: department=%d, date=%s, %s-%s, seats=%d",
		slot.DepartmentID, req.Date, slot.StartTime, slot.EndTime, slot.TotalSeats)

	created, err := s.slotRepo.Create(ctx, slot)
	if err != nil {
		if errors.Is(err, slotRepo.ErrDepartmentNotFound) {
			s.logger.Warn("Create: department id=%d not found", slot.DepartmentID)
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("Create: repository error: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Create: created slot id=%d", created.ID)
	return models.FromDomainSlot(created), nil
}

// ListByDepartment слоты отделения в порядке даты и времени начала; date опционален
func (s *Service) ListByDepartment(ctx context.Context, departmentID int64, date *time.Time) (*models.SlotListResponse, error) {
	if _, err := s.departmentRepo.GetByID(ctx, departmentID); err != nil {
		if errors.Is(err, departmentRepo.ErrDepartmentNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("ListByDepartment: failed to get department id=%d: %v", departmentID, err)
		return nil, fmt.Errorf("%w: ListByDepartment - repository error: %v", ErrInternal, err)
	}

	slots, err := s.slotRepo.ListByDepartment(ctx, departmentID, date)
	if err != nil {
		s.logger.Error("ListByDepartment: repository error for department id=%d: %v", departmentID, err)
		return nil, fmt.Errorf("%w: ListByDepartment - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSlotList(departmentID, slots), nil
}

// UpdateCapacity меняет общее число мест, сохраняя число занятых.
// Выполняется под той же блокировкой строки, что и резервирование.
func (s *Service) UpdateCapacity(ctx context.Context, slotID int64, req *models.UpdateCapacityRequest) (*models.SlotResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var result *domain.Slot

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		slot, err := s.slotRepo.GetByIDForUpdate(txCtx, slotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("%w: failed to lock slot: %v", ErrInternal, err)
		}

		booked := slot.BookedSeats()
		if req.TotalSeats < booked {
			s.logger.Warn("UpdateCapacity: slot id=%d has %d booked seats, requested total %d",
				slotID, booked, req.TotalSeats)
			return fmt.Errorf("%w: %d seats already booked", ErrCapacityBelowBooked, booked)
		}

		available := req.TotalSeats - booked
		if err := s.slotRepo.UpdateCapacity(txCtx, slotID, req.TotalSeats, available); err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("%w: failed to update capacity: %v", ErrInternal, err)
		}

		slot.TotalSeats = req.TotalSeats
		slot.AvailableSeats = available
		result = slot
		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotFound), errors.Is(err, ErrCapacityBelowBooked):
			return nil, err
		case errors.Is(err, ErrInternal):
			s.logger.Error("UpdateCapacity: slot id=%d: %v", slotID, err)
			return nil, err
		default:
			s.logger.Error("UpdateCapacity: transaction failed for slot id=%d: %v", slotID, err)
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
	}

	s.logger.Info("UpdateCapacity: slot id=%d now has %d/%d seats available",
		slotID, result.AvailableSeats, result.TotalSeats)
	return models.FromDomainSlot(result), nil
}

func (s *Service) parseCreateRequest(req *models.CreateSlotRequest) (*domain.Slot, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}
	if err := validation.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	now := s.timeProvider.Now()
	date, err := time.ParseInLocation(domain.DateFormat, req.Date, now.Location())
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date: %v", ErrInvalidInput, err)
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return nil, ErrDateInPast
	}

	start, err := types.NewTimeStringFromString(req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid start time: %v", ErrInvalidInput, err)
	}
	end, err := types.NewTimeStringFromString(req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid end time: %v", ErrInvalidInput, err)
	}
	if !end.IsAfter(start) {
		return nil, ErrInvalidTimeRange
	}

	return &domain.Slot{
		DepartmentID: req.DepartmentID,
		Date:         date,
		StartTime:    start,
		EndTime:      end,
		TotalSeats:   req.TotalSeats,
	}, nil
}

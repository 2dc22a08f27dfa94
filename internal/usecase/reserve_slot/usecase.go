package reserve_slot

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/HospitalBookingService/internal/domain"
	departmentRepo "github.com/m04kA/HospitalBookingService/internal/infra/storage/department"
	slotRepo "github.com/m04kA/HospitalBookingService/internal/infra/storage/slot"
	"github.com/m04kA/HospitalBookingService/pkg/pgerrors"
)

// UseCase резервирование одного места в слоте приёма
type UseCase struct {
	departmentRepo DepartmentRepository
	slotRepo       SlotRepository
	bookingRepo    BookingRepository
	referenceRepo  ReferenceRepository
	txManager      TransactionManager
	scheme         domain.ReferenceScheme
	metrics        Metrics
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case; metrics может быть nil
func NewUseCase(
	departmentRepo DepartmentRepository,
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	referenceRepo ReferenceRepository,
	txManager TransactionManager,
	scheme domain.ReferenceScheme,
	timeProvider TimeProvider,
	metrics Metrics,
	logger Logger,
) *UseCase {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}
	return &UseCase{
		departmentRepo: departmentRepo,
		slotRepo:       slotRepo,
		bookingRepo:    bookingRepo,
		referenceRepo:  referenceRepo,
		txManager:      txManager,
		scheme:         scheme,
		metrics:        metrics,
		timeProvider:   timeProvider,
		logger:         logger,
	}
}

// Execute создает бронирование в статусе pending и списывает одно место слота.
//
// Всё происходит в одной транзакции: строка слота блокируется (FOR UPDATE), номер бронирования
// выделяется из счётчика периода, бронирование вставляется, места списываются условным UPDATE.
// Любая ошибка откатывает транзакцию целиком, поэтому списание без бронирования
// (и наоборот) невозможно. Временные ошибки хранилища возвращаются как ErrRetryable.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	resp, err := uc.execute(ctx, req)
	uc.observe(err)
	return resp, err
}

func (uc *UseCase) execute(ctx context.Context, req *Request) (*Response, error) {
	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ReserveSlot: validation failed: %v", err)
		return nil, err
	}

	uc.logger.Info("ReserveSlot: department=%d, slot=%d, authenticated=%t",
		req.DepartmentID, req.SlotID, req.CitizenID != nil)

	// 2. Проверяем отделение до открытия транзакции
	if _, err := uc.departmentRepo.GetByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, departmentRepo.ErrDepartmentNotFound) {
			uc.logger.Warn("ReserveSlot: department id=%d not found", req.DepartmentID)
			return nil, ErrDepartmentNotFound
		}
		return nil, uc.storageError("get department", err)
	}

	now := uc.timeProvider.Now()
	periodKey := uc.scheme.PeriodKey(now)

	var (
		created *domain.Booking
		slot    *domain.Slot
	)

	// 3. Единица работы: блокировка слота, номер, вставка, списание
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 3.1. Блокируем строку слота до конца транзакции
		locked, err := uc.slotRepo.GetByIDForUpdate(txCtx, req.SlotID)
		if err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				uc.logger.Warn("ReserveSlot: slot id=%d not found", req.SlotID)
				return ErrSlotNotFound
			}
			return uc.storageError("lock slot", err)
		}

		// Слот чужого отделения считается ненайденным
		if locked.DepartmentID != req.DepartmentID {
			uc.logger.Warn("ReserveSlot: slot id=%d belongs to department id=%d, not %d",
				locked.ID, locked.DepartmentID, req.DepartmentID)
			return ErrSlotNotFound
		}

		// 3.2. Проверяем остаток мест под блокировкой
		if locked.IsFull() {
			uc.logger.Warn("ReserveSlot: slot id=%d is full (%d seats)", locked.ID, locked.TotalSeats)
			return ErrCapacityExhausted
		}

		// 3.3. Выделяем номер бронирования
		seq, err := uc.referenceRepo.Next(txCtx, periodKey)
		if err != nil {
			return uc.storageError("allocate reference number", err)
		}

		// 3.4. Вставляем бронирование
		booking, err := uc.bookingRepo.Create(txCtx, &domain.Booking{
			ReferenceNumber: uc.scheme.Format(periodKey, seq),
			SlotID:          locked.ID,
			DepartmentID:    locked.DepartmentID,
			CreatedBy:       req.CitizenID,
			PatientName:     req.PatientName,
			Phone:           req.Phone,
			Status:          domain.StatusPending,
		})
		if err != nil {
			return uc.storageError("create booking", err)
		}

		// 3.5. Списываем место; ноль затронутых строк означает, что мест уже нет
		if err := uc.slotRepo.DecrementAvailable(txCtx, locked.ID); err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotAvailable) {
				uc.logger.Warn("ReserveSlot: slot id=%d ran out of seats", locked.ID)
				return ErrCapacityExhausted
			}
			return uc.storageError("decrement seats", err)
		}

		created = booking
		slot = locked
		return nil
	})

	if err != nil {
		if isReservationError(err) {
			return nil, err
		}
		// Ошибки Begin/Commit приходят от менеджера транзакций
		return nil, uc.storageError("transaction", err)
	}

	uc.logger.Info("ReserveSlot: created booking %s (id=%d) in slot id=%d, %d seats left",
		created.ReferenceNumber, created.ID, slot.ID, slot.AvailableSeats-1)

	return &Response{
		BookingID:       created.ID,
		ReferenceNumber: created.ReferenceNumber,
		Status:          string(created.Status),
		SlotID:          slot.ID,
		DepartmentID:    slot.DepartmentID,
		SlotDate:        slot.Date,
		StartTime:       slot.StartTime,
		EndTime:         slot.EndTime,
		PatientName:     created.PatientName,
		Phone:           created.Phone,
		CitizenID:       created.CreatedBy,
		CreatedAt:       created.CreatedAt,
	}, nil
}

// storageError классифицирует ошибку хранилища: временные сбои можно повторить, остальное внутреннее
func (uc *UseCase) storageError(step string, err error) error {
	if pgerrors.IsTransient(err) || errors.Is(err, pgerrors.ErrTransient) {
		uc.logger.Warn("ReserveSlot: transient failure on %s: %v", step, err)
		return fmt.Errorf("%w: %s: %v", ErrRetryable, step, err)
	}
	uc.logger.Error("ReserveSlot: failed to %s: %v", step, err)
	return fmt.Errorf("%w: %s: %v", ErrInternal, step, err)
}

func isReservationError(err error) bool {
	for _, target := range []error{
		ErrInvalidInput,
		ErrDepartmentNotFound,
		ErrSlotNotFound,
		ErrCapacityExhausted,
		ErrRetryable,
		ErrInternal,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (uc *UseCase) observe(err error) {
	if uc.metrics == nil {
		return
	}

	outcome := outcomeCreated
	switch {
	case err == nil:
	case errors.Is(err, ErrInvalidInput):
		outcome = outcomeInvalid
	case errors.Is(err, ErrDepartmentNotFound), errors.Is(err, ErrSlotNotFound):
		outcome = outcomeNotFound
	case errors.Is(err, ErrCapacityExhausted):
		outcome = outcomeExhausted
	case errors.Is(err, ErrRetryable):
		outcome = outcomeRetryable
	default:
		outcome = outcomeFailed
	}
	uc.metrics.IncReservation(outcome)
}

package delete_slot

import (
	"context"
	"errors"
	"fmt"

	slotRepo "github.com/m04kA/HospitalBookingService/internal/infra/storage/slot"
)

// UseCase удаление слота с защитой существующих бронирований
type UseCase struct {
	slotRepo    SlotRepository
	bookingRepo BookingRepository
	txManager   TransactionManager
	logger      Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:    slotRepo,
		bookingRepo: bookingRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// Execute удаляет слот. Если у слота есть бронирования, без Force возвращается ErrSlotHasBookings
// и ничего не меняется; с Force бронирования удаляются вместе со слотом в той же транзакции.
// Строка слота блокируется, чтобы параллельное резервирование не добавило бронирование
// между подсчётом и удалением.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || req.SlotID <= 0 {
		return nil, fmt.Errorf("%w: slot ID must be positive", ErrInvalidInput)
	}

	uc.logger.Info("DeleteSlot: slot=%d, force=%t", req.SlotID, req.Force)

	resp := &Response{SlotID: req.SlotID}

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		// 1. Блокируем слот
		if _, err := uc.slotRepo.GetByIDForUpdate(txCtx, req.SlotID); err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				uc.logger.Warn("DeleteSlot: slot id=%d not found", req.SlotID)
				return ErrSlotNotFound
			}
			uc.logger.Error("DeleteSlot: failed to lock slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to lock slot: %v", ErrInternal, err)
		}

		// 2. Считаем бронирования (любого статуса)
		count, err := uc.bookingRepo.CountBySlot(txCtx, req.SlotID)
		if err != nil {
			uc.logger.Error("DeleteSlot: failed to count bookings of slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to count bookings: %v", ErrInternal, err)
		}

		if count > 0 && !req.Force {
			uc.logger.Warn("DeleteSlot: slot id=%d has %d bookings, force not set", req.SlotID, count)
			return fmt.Errorf("%w: %d bookings reference the slot", ErrSlotHasBookings, count)
		}

		// 3. Каскадно удаляем бронирования
		if count > 0 {
			deleted, err := uc.bookingRepo.DeleteBySlot(txCtx, req.SlotID)
			if err != nil {
				uc.logger.Error("DeleteSlot: failed to delete bookings of slot id=%d: %v", req.SlotID, err)
				return fmt.Errorf("%w: failed to delete bookings: %v", ErrInternal, err)
			}
			resp.Cascaded = true
			resp.DeletedBookings = deleted
		}

		// 4. Удаляем слот
		if err := uc.slotRepo.Delete(txCtx, req.SlotID); err != nil {
			if errors.Is(err, slotRepo.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			uc.logger.Error("DeleteSlot: failed to delete slot id=%d: %v", req.SlotID, err)
			return fmt.Errorf("%w: failed to delete slot: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, ErrSlotNotFound) || errors.Is(err, ErrSlotHasBookings) || errors.Is(err, ErrInternal) {
			return nil, err
		}
		uc.logger.Error("DeleteSlot: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	uc.logger.Info("DeleteSlot: deleted slot id=%d, cascaded=%t, bookings=%d",
		resp.SlotID, resp.Cascaded, resp.DeletedBookings)

	return resp, nil
}

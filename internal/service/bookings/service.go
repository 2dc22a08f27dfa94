package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/m04kA/HospitalBookingService/internal/domain"
	bookingRepo "github.com/m04kA/HospitalBookingService/internal/infra/storage/booking"
	"github.com/m04kA/HospitalBookingService/internal/service/bookings/models"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// Service сервис для работы с бронированиями
type Service struct {
	bookingRepo BookingRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса бронирований
func NewService(bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// GetByReference получает бронирование по номеру
// Доступ: администратор, автор бронирования или тот, кто знает номер и телефон пациента
func (s *Service) GetByReference(ctx context.Context, reference string, caller models.Caller) (*models.BookingResponse, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, fmt.Errorf("%w: reference number is required", ErrInvalidInput)
	}

	s.logger.Info("GetByReference: fetching booking %s (admin=%t)", reference, caller.IsAdmin)

	booking, err := s.bookingRepo.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByReference: booking %s not found", reference)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByReference: repository error for booking %s: %v", reference, err)
		return nil, fmt.Errorf("%w: GetByReference - repository error: %v", ErrInternal, err)
	}

	if !canView(booking, caller) {
		s.logger.Warn("GetByReference: access denied to booking %s", reference)
		return nil, ErrAccessDenied
	}

	return models.FromDomainBooking(booking), nil
}

// ListByCitizen история бронирований гражданина, новые сверху
func (s *Service) ListByCitizen(ctx context.Context, citizenID string) (*models.BookingListResponse, error) {
	if !domain.IsValidCitizenID(citizenID) {
		return nil, fmt.Errorf("%w: invalid citizen ID", ErrInvalidInput)
	}

	bookings, err := s.bookingRepo.ListByCitizen(ctx, citizenID)
	if err != nil {
		s.logger.Error("ListByCitizen: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListByCitizen - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListByCitizen: fetched %d bookings", len(bookings))
	return models.FromDomainBookingList(bookings), nil
}

// ListForAdmin административный список бронирований с фильтрацией
func (s *Service) ListForAdmin(ctx context.Context, req *models.ListForAdminRequest) (*models.BookingListResponse, error) {
	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("ListForAdmin: invalid filter: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if filter.Limit == 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}

	bookings, err := s.bookingRepo.ListWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("ListForAdmin: repository error: %v", err)
		return nil, fmt.Errorf("%w: ListForAdmin - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListForAdmin: fetched %d bookings", len(bookings))
	return models.FromDomainBookingList(bookings), nil
}

// SetStatus выставляет бронированию любой из допустимых статусов.
// Меняется только статус: места слота не возвращаются даже при отмене.
func (s *Service) SetStatus(ctx context.Context, reference string, status string) error {
	s.logger.Info("SetStatus: booking %s -> %s", reference, status)

	newStatus, err := models.ToDomainBookingStatus(status)
	if err != nil {
		s.logger.Warn("SetStatus: invalid status=%q for booking %s", status, reference)
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	if err := s.bookingRepo.UpdateStatusByReference(ctx, reference, newStatus); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("SetStatus: booking %s not found", reference)
			return ErrBookingNotFound
		}
		s.logger.Error("SetStatus: repository error for booking %s: %v", reference, err)
		return fmt.Errorf("%w: SetStatus - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("SetStatus: booking %s is now %s", reference, newStatus)
	return nil
}

// MarkRead отмечает бронирование просмотренным администратором
func (s *Service) MarkRead(ctx context.Context, reference string) error {
	if err := s.bookingRepo.MarkReadByReference(ctx, reference); err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			return ErrBookingNotFound
		}
		s.logger.Error("MarkRead: repository error for booking %s: %v", reference, err)
		return fmt.Errorf("%w: MarkRead - repository error: %v", ErrInternal, err)
	}
	return nil
}

// CountUnread количество бронирований, которые администратор ещё не открыл
func (s *Service) CountUnread(ctx context.Context) (*models.UnreadCountResponse, error) {
	count, err := s.bookingRepo.CountUnread(ctx)
	if err != nil {
		s.logger.Error("CountUnread: repository error: %v", err)
		return nil, fmt.Errorf("%w: CountUnread - repository error: %v", ErrInternal, err)
	}
	return &models.UnreadCountResponse{Unread: count}, nil
}

func canView(booking *domain.Booking, caller models.Caller) bool {
	if caller.IsAdmin {
		return true
	}
	if booking.IsOwnedBy(caller.CitizenID) {
		return true
	}
	phone := strings.TrimSpace(caller.Phone)
	return phone != "" && phone == booking.Phone
}

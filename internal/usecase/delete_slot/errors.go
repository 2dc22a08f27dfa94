package delete_slot

import "errors"

var (
	// ErrInvalidInput возвращается при некорректном ID слота
	ErrInvalidInput = errors.New("delete_slot: invalid input data")

	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("delete_slot: slot not found")

	// ErrSlotHasBookings возвращается, когда у слота есть бронирования, а force не указан
	ErrSlotHasBookings = errors.New("delete_slot: slot has bookings, use force=true to delete them")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("delete_slot: internal error")
)

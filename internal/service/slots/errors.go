package slots

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("slot not found")

	// ErrDepartmentNotFound возвращается, когда отделение не найдено
	ErrDepartmentNotFound = errors.New("department not found")

	// ErrCapacityBelowBooked возвращается, когда новая вместимость меньше числа занятых мест
	ErrCapacityBelowBooked = errors.New("new capacity is below the number of booked seats")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidTimeRange возвращается, когда окончание слота не позже начала
	ErrInvalidTimeRange = errors.New("slot end time must be after start time")

	// ErrDateInPast возвращается при создании слота на прошедшую дату
	ErrDateInPast = errors.New("slot date is in the past")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)

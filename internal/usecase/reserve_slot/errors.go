package reserve_slot

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reserve_slot: invalid input data")

	// ErrDepartmentNotFound возвращается, когда отделение не найдено
	ErrDepartmentNotFound = errors.New("reserve_slot: department not found")

	// ErrSlotNotFound возвращается, когда слот не найден или принадлежит другому отделению
	ErrSlotNotFound = errors.New("reserve_slot: slot not found")

	// ErrCapacityExhausted возвращается, когда в слоте не осталось мест
	// Автоматически не повторяется: нужно выбрать другой слот
	ErrCapacityExhausted = errors.New("reserve_slot: no seats left in slot")

	// ErrRetryable возвращается при временной ошибке хранилища (таймаут блокировки, deadlock,
	// потеря соединения); ничего не зафиксировано, запрос можно повторить целиком
	ErrRetryable = errors.New("reserve_slot: temporary storage failure, retry")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reserve_slot: internal error")
)

// Исходы резервирования для метрик
const (
	outcomeCreated   = "created"
	outcomeInvalid   = "invalid"
	outcomeNotFound  = "not_found"
	outcomeExhausted = "exhausted"
	outcomeRetryable = "retryable"
	outcomeFailed    = "failed"
)

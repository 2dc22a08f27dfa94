package departments

import "errors"

var (
	// ErrDepartmentNotFound возвращается, когда отделение не найдено
	ErrDepartmentNotFound = errors.New("department not found")

	// ErrDepartmentExists возвращается, когда отделение с таким названием уже есть
	ErrDepartmentExists = errors.New("department with this name already exists")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)

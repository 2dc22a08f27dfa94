package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/m04kA/HospitalBookingService/internal/domain"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{9,15}$`)

var (
	once     sync.Once
	instance *validator.Validate
)

// Validator общий экземпляр validator с доменными тегами:
// citizenid - 13-значный идентификатор гражданина с контрольной цифрой
// phone     - 9-15 цифр, допускается ведущий +
// status    - один из статусов бронирования
func Validator() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		_ = v.RegisterValidation("citizenid", func(fl validator.FieldLevel) bool {
			return domain.IsValidCitizenID(fl.Field().String())
		})
		_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
			return domain.BookingStatus(fl.Field().String()).IsValid()
		})
		instance = v
	})
	return instance
}

// Struct валидирует структуру и возвращает ошибку с человекочитаемым описанием первого нарушения
func Struct(s interface{}) error {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, describe(fe))
	}
	return errors.New(strings.Join(messages, "; "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gt", "gte", "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), minBound(fe))
	case "lte", "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "citizenid":
		return fmt.Sprintf("%s is not a valid citizen ID", fe.Field())
	case "phone":
		return fmt.Sprintf("%s is not a valid phone number", fe.Field())
	case "status":
		return fmt.Sprintf("%s must be one of pending, confirmed, cancelled", fe.Field())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

func minBound(fe validator.FieldError) string {
	if fe.Tag() == "gt" {
		return fmt.Sprintf("greater than %s", fe.Param())
	}
	return fe.Param()
}

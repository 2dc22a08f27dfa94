package domain

import (
	"fmt"
	"time"
)

// ReferenceScheme описывает формат номера бронирования: <prefix><period>-<seq>
// Последовательность берётся из монотонного счётчика в БД, отдельного на каждый период
type ReferenceScheme struct {
	Prefix string
	Period string // ReferencePeriodYear | ReferencePeriodDate
	Width  int
}

// PeriodKey ключ периода выделения номеров для момента now
func (s ReferenceScheme) PeriodKey(now time.Time) string {
	if s.Period == ReferencePeriodDate {
		return now.Format("20060102")
	}
	return now.Format("2006")
}

// Format собирает номер бронирования; seq шире Width печатается целиком
func (s ReferenceScheme) Format(periodKey string, seq int64) string {
	return fmt.Sprintf("%s%s-%0*d", s.Prefix, periodKey, s.Width, seq)
}

package reference

import (
	"context"
	"fmt"

	"github.com/m04kA/HospitalBookingService/pkg/dbmetrics"
	"github.com/m04kA/HospitalBookingService/pkg/pgerrors"
	"github.com/m04kA/HospitalBookingService/pkg/psqlbuilder"
)

const tableReferenceCounters = "reference_counters"

// Repository монотонные счётчики номеров бронирований, по одному на период
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория счётчиков
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Next атомарно увеличивает счётчик периода и возвращает новое значение
// Upsert берёт блокировку строки счётчика, поэтому параллельные транзакции одного периода
// получают разные значения; при откате транзакции значение не расходуется
func (r *Repository) Next(ctx context.Context, periodKey string) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableReferenceCounters).
		Columns("period_key", "last_value").
		Values(periodKey, 1).
		Suffix("ON CONFLICT (period_key) DO UPDATE SET last_value = " +
			tableReferenceCounters + ".last_value + 1 RETURNING last_value").
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: Next - build upsert query: %v", ErrBuildQuery, err)
	}

	var value int64
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		return 0, pgerrors.Wrap(ErrExecQuery, "Next - execute upsert", err)
	}

	return value, nil
}

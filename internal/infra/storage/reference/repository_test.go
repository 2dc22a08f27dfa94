package reference

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/HospitalBookingService/pkg/pgerrors"
)

func TestRepository_Next(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRepository(db)

	query := regexp.QuoteMeta("INSERT INTO reference_counters (period_key,last_value) VALUES ($1,$2) ON CONFLICT (period_key) DO UPDATE SET last_value = reference_counters.last_value + 1 RETURNING last_value")

	mock.ExpectQuery(query).WithArgs("2026", 1).
		WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(int64(1)))
	mock.ExpectQuery(query).WithArgs("2026", 1).
		WillReturnRows(sqlmock.NewRows([]string{"last_value"}).AddRow(int64(2)))

	first, err := repo.Next(context.Background(), "2026")
	require.NoError(t, err)
	second, err := repo.Next(context.Background(), "2026")
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Next_Deadlock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("INSERT INTO reference_counters").WillReturnError(&pq.Error{Code: "40P01"})

	_, err = NewRepository(db).Next(context.Background(), "2026")
	assert.ErrorIs(t, err, ErrExecQuery)
	assert.ErrorIs(t, err, pgerrors.ErrTransient)
}

package booking

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-SalonBookingService/internal/domain"
	"github.com/m04kA/SMC-SalonBookingService/pkg/dbmetrics"
	"github.com/m04kA/SMC-SalonBookingService/pkg/ptr"
)

func newRepo(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func serviceRows(start time.Time) *sqlmock.Rows {
	return sqlmock.NewRows(serviceColumns).
		AddRow(int64(1), int64(100), int64(10), int64(7), start, start.Add(time.Hour), 60, "250.00", 0, 15)
}

func TestGetStaffServices(t *testing.T) {
	from := time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)

	t.Run("excludes inactive statuses", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectQuery(`FROM booking_services bs JOIN bookings b ON b.id = bs.booking_id WHERE bs.staff_id IN \(\$1\) AND b.status NOT IN \(\$2,\$3,\$4\) AND bs.start_at < \$5 AND bs.end_at > \$6 ORDER BY bs.start_at ASC$`).
			WithArgs(int64(7), "cancelled_by_customer", "cancelled_by_provider", "no_show", to, from).
			WillReturnRows(serviceRows(from.Add(10 * time.Hour)))

		services, err := repo.GetStaffServices(context.Background(), []int64{7}, from, to)
		require.NoError(t, err)
		require.Len(t, services, 1)
		assert.Equal(t, 15, services[0].PostBufferMinutes)
		assert.True(t, decimal.NewFromInt(250).Equal(services[0].Price))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("locks rows inside transaction", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		repo := NewRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`ORDER BY bs.start_at ASC FOR UPDATE OF bs`).
			WillReturnRows(serviceRows(from.Add(10 * time.Hour)))
		mock.ExpectRollback()

		tx, err := db.Begin()
		require.NoError(t, err)
		ctx := dbmetrics.WithTx(context.Background(), &dbmetrics.SqlTxWrapper{Tx: tx})

		services, err := repo.GetStaffServices(ctx, []int64{7}, from, to)
		require.NoError(t, err)
		assert.Len(t, services, 1)
		require.NoError(t, tx.Rollback())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty staff list skips query", func(t *testing.T) {
		repo, mock := newRepo(t)
		services, err := repo.GetStaffServices(context.Background(), nil, from, to)
		require.NoError(t, err)
		assert.Empty(t, services)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCancel(t *testing.T) {
	at := time.Date(2026, 4, 5, 12, 0, 0, 0, time.UTC)

	t.Run("updated", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectExec(`UPDATE bookings SET status = \$1, cancellation_reason = \$2, cancelled_at = \$3, updated_at = \$4 WHERE id = \$5`).
			WithArgs(domain.StatusCancelledByCustomer, "sick", at, at, int64(3)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Cancel(context.Background(), 3, domain.StatusCancelledByCustomer, ptr.Ptr("sick"), at)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row", func(t *testing.T) {
		repo, mock := newRepo(t)
		mock.ExpectExec("UPDATE bookings").WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Cancel(context.Background(), 3, domain.StatusCancelledByCustomer, nil, at)
		assert.ErrorIs(t, err, ErrBookingNotFound)
	})
}

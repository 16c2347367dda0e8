package postgres_test

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jportela/almoxarifado-api/internal/application/stock"
	"github.com/jportela/almoxarifado-api/internal/domain"
	"github.com/jportela/almoxarifado-api/internal/domain/entity"
	"github.com/jportela/almoxarifado-api/internal/infrastructure/postgres"
)

func balanceWithQuantity(quantity int64) *entity.Balance {
	return &entity.Balance{
		ComponentID: testKey.ComponentID,
		LocationID:  testKey.LocationID,
		OwnerID:     testKey.OwnerID,
		Quantity:    quantity,
	}
}

func TestTxRunnerCommitsOnSuccess(t *testing.T) {
	mock := newMock(t)
	runner := postgres.NewTxRunner(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO balances`).
		WithArgs(testKey.ComponentID, testKey.LocationID, testKey.OwnerID, int64(5)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback() // rollback do defer após o commit é um no-op

	err := runner.Run(context.Background(), func(r stock.Repos) error {
		return r.Balances.Upsert(balanceWithQuantity(5))
	})
	require.NoError(t, err)
}

func TestTxRunnerRollsBackOnError(t *testing.T) {
	mock := newMock(t)
	runner := postgres.NewTxRunner(mock)

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := runner.Run(context.Background(), func(r stock.Repos) error {
		return domain.ErrInvalidInput
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTxRunnerWrapsSerializationFailure(t *testing.T) {
	mock := newMock(t)
	runner := postgres.NewTxRunner(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO balances`).
		WithArgs(testKey.ComponentID, testKey.LocationID, testKey.OwnerID, int64(5)).
		WillReturnError(&pgconn.PgError{Code: "40001", Message: "could not serialize access"})
	mock.ExpectRollback()

	err := runner.Run(context.Background(), func(r stock.Repos) error {
		return r.Balances.Upsert(balanceWithQuantity(5))
	})
	assert.ErrorIs(t, err, domain.ErrConsistencyRace, "40001 deve virar ErrConsistencyRace para habilitar a retentativa")
}

func TestTxRunnerWrapsDeadlock(t *testing.T) {
	mock := newMock(t)
	runner := postgres.NewTxRunner(mock)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO balances`).
		WithArgs(testKey.ComponentID, testKey.LocationID, testKey.OwnerID, int64(5)).
		WillReturnError(&pgconn.PgError{Code: "40P01", Message: "deadlock detected"})
	mock.ExpectRollback()

	err := runner.Run(context.Background(), func(r stock.Repos) error {
		return r.Balances.Upsert(balanceWithQuantity(5))
	})
	assert.ErrorIs(t, err, domain.ErrConsistencyRace)
}

package postgres_test

import (
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jportela/almoxarifado-api/internal/domain"
	"github.com/jportela/almoxarifado-api/internal/domain/entity"
	"github.com/jportela/almoxarifado-api/internal/infrastructure/postgres"
)

func TestMovementRepoCreateAssignsID(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewMovementRepository(mock)
	now := time.Now()

	mock.ExpectExec(`INSERT INTO movements`).
		WithArgs(pgxmock.AnyArg(), testKey.ComponentID, testKey.LocationID, testKey.OwnerID,
			entity.MovementTypeIN, int64(10), "pedido 42", now, now, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	movement := &entity.Movement{
		ComponentID: testKey.ComponentID,
		LocationID:  testKey.LocationID,
		OwnerID:     testKey.OwnerID,
		Type:        entity.MovementTypeIN,
		Quantity:    10,
		Reference:   "pedido 42",
		Date:        now,
		CreatedAt:   now,
	}
	require.NoError(t, repo.Create(movement))
	assert.NotEmpty(t, movement.ID, "o repositório atribui o UUID quando ausente")
}

func TestMovementRepoSumByKey(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewMovementRepository(mock)

	mock.ExpectQuery(`FILTER \(WHERE type = 'IN'\)`).
		WithArgs(testKey.ComponentID, testKey.LocationID, testKey.OwnerID).
		WillReturnRows(pgxmock.NewRows([]string{"in", "out"}).AddRow(int64(30), int64(12)))

	in, out, err := repo.SumByKey(testKey)
	require.NoError(t, err)
	assert.Equal(t, int64(30), in)
	assert.Equal(t, int64(12), out)
}

func TestMovementRepoGetByIDMissing(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewMovementRepository(mock)

	mock.ExpectQuery(`SELECT id, component_id`).
		WithArgs("faltando").
		WillReturnRows(pgxmock.NewRows([]string{"id", "component_id", "location_id", "owner_id", "type", "quantity", "reference", "date", "created_at", "created_by"}))

	movement, err := repo.GetByID("faltando")
	require.NoError(t, err)
	assert.Nil(t, movement)
}

func TestMovementRepoDeleteNotFound(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewMovementRepository(mock)

	mock.ExpectExec(`DELETE FROM movements`).
		WithArgs("faltando").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete("faltando")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMovementRepoListByComponentDateRange(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewMovementRepository(mock)
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	createdBy := "admin"

	rows := pgxmock.NewRows([]string{"id", "component_id", "location_id", "owner_id", "type", "quantity", "reference", "date", "created_at", "created_by"}).
		AddRow("m1", testKey.ComponentID, testKey.LocationID, testKey.OwnerID, entity.MovementTypeOUT, int64(3), "", now, now, &createdBy)
	mock.ExpectQuery(`AND date >= \$2 AND date <= \$3`).
		WithArgs(testKey.ComponentID, from, to, 50, 0).
		WillReturnRows(rows)

	list, err := repo.ListByComponent(testKey.ComponentID, &from, &to, 50, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "m1", list[0].ID)
	assert.Equal(t, "admin", list[0].CreatedBy)
}

package student

import (
	"context"
	"testing"

	"gym-panel/internal/backend/backendtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetByIDsSkipsEmptyLookup(t *testing.T) {
	db := backendtest.New()
	repo := NewStudentRepository(db)

	students, err := repo.GetByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, students)
	assert.Empty(t, db.Calls)
}

func TestGetAllOrdersByName(t *testing.T) {
	db := backendtest.New()
	repo := NewStudentRepository(db)

	_, err := repo.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "students" ORDER BY "full_name"`, db.Last().Query)
}

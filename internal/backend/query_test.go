package backend

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSelect(t *testing.T) {
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	q := newQuery([]Option{
		Gte("date", from),
		Eq("method", "cash"),
		IsNull("student_id"),
		Order("date", true),
		Order("id", false),
		Limit(20),
	})

	sql, args, err := buildSelect("gym", "payments", q)
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT * FROM "gym"."payments" WHERE "date" >= $1 AND "method" = $2 AND "student_id" IS NULL ORDER BY "date" DESC, "id" LIMIT 20`,
		sql)
	assert.Equal(t, []any{from, "cash"}, args)
}

func TestBuildSelectIn(t *testing.T) {
	sql, args, err := buildSelect("", "students", newQuery([]Option{In("id", []int64{1, 2})}))
	require.NoError(t, err)

	assert.Equal(t, `SELECT * FROM "students" WHERE "id" = ANY($1)`, sql)
	require.Len(t, args, 1)
	assert.Equal(t, pq.Array([]int64{1, 2}), args[0])
}

func TestBuildInsertSortsColumns(t *testing.T) {
	sql, args, err := buildInsert("gym", "expenses", Row{"description": "rent", "amount": 500.0, "category": "rent"})
	require.NoError(t, err)

	assert.Equal(t,
		`INSERT INTO "gym"."expenses" ("amount", "category", "description") VALUES ($1, $2, $3) RETURNING *`,
		sql)
	assert.Equal(t, []any{500.0, "rent", "rent"}, args)
}

func TestBuildUpdateNumbersFiltersAfterSet(t *testing.T) {
	q := newQuery([]Option{Eq("id", int64(7)), Eq("sessions_remaining", 3)})
	sql, args, err := buildUpdate("gym", "pt_subscriptions", Row{"sessions_remaining": 2, "status": "active"}, q)
	require.NoError(t, err)

	assert.Equal(t,
		`UPDATE "gym"."pt_subscriptions" SET "sessions_remaining" = $1, "status" = $2 WHERE "id" = $3 AND "sessions_remaining" = $4`,
		sql)
	assert.Equal(t, []any{2, "active", int64(7), 3}, args)
}

func TestUnfilteredWritesAreRefused(t *testing.T) {
	_, _, err := buildUpdate("gym", "payments", Row{"amount": 1}, query{})
	assert.ErrorIs(t, err, ErrUnfiltered)

	_, _, err = buildDelete("gym", "payments", query{})
	assert.ErrorIs(t, err, ErrUnfiltered)

	_, _, err = buildInsert("gym", "payments", Row{})
	assert.ErrorIs(t, err, ErrEmptyRow)
}

func TestIdentifiersAreValidated(t *testing.T) {
	cases := []struct {
		name  string
		build func() error
	}{
		{"table", func() error {
			_, _, err := buildSelect("gym", "payments; drop table x", query{})
			return err
		}},
		{"schema", func() error {
			_, _, err := buildSelect("Gym", "payments", query{})
			return err
		}},
		{"filter column", func() error {
			_, _, err := buildDelete("gym", "payments", newQuery([]Option{Eq(`id" OR 1=1 --`, 1)}))
			return err
		}},
		{"order column", func() error {
			_, _, err := buildSelect("gym", "payments", newQuery([]Option{Order("date desc", false)}))
			return err
		}},
		{"insert column", func() error {
			_, _, err := buildInsert("gym", "payments", Row{"Amount": 1})
			return err
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.build(), ErrInvalidIdentifier)
		})
	}
}

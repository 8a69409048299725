package repository

import (
	"database/sql/driver"
	"encoding/json"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutorbook/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func availabilityJSON(t *testing.T, table models.WeeklyAvailability) string {
	t.Helper()
	raw, err := json.Marshal(map[string]map[string]bool(table))
	require.NoError(t, err)
	return string(raw)
}

// bookedSlotArg matches an availability column value whose slot is booked.
type bookedSlotArg struct {
	day, hour string
}

func (a bookedSlotArg) Match(v driver.Value) bool {
	raw, ok := v.(string)
	if !ok {
		return false
	}
	var table models.WeeklyAvailability
	if err := json.Unmarshal([]byte(raw), &table); err != nil {
		return false
	}
	return !table.IsFree(a.day, a.hour)
}

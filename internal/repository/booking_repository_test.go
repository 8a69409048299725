package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutorbook/internal/models"
)

func newBooking() *models.Booking {
	return &models.Booking{TeacherID: 3, Day: "wed", StartTime: "14:00", ClientName: "Ivan", ClientPhone: "+7-916-1234567"}
}

func TestBookingRepositoryCreateFlipsSlotAndInserts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT free FROM teachers WHERE id = $1 FOR UPDATE")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"free"}).AddRow(availabilityJSON(t, models.NewWeeklyAvailability(true))))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE teachers SET free = $1 WHERE id = $2")).
		WithArgs(bookedSlotArg{day: "wed", hour: "14:00"}, 3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO bookings (teacher_id, day, start_time, client_name, client_phone, created_at)")).
		WithArgs(3, "wed", "14:00", "Ivan", "+7-916-1234567", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))
	mock.ExpectCommit()

	booking := newBooking()
	require.NoError(t, repo.Create(context.Background(), booking))
	assert.Equal(t, int64(7), booking.ID)
	assert.False(t, booking.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryCreateRejectsBookedSlot(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	table := models.NewWeeklyAvailability(true)
	table["wed"]["14:00"] = false

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT free FROM teachers WHERE id = $1 FOR UPDATE")).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"free"}).AddRow(availabilityJSON(t, table)))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), newBooking())
	assert.ErrorIs(t, err, models.ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryCreateUnknownTeacher(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT free FROM teachers").WithArgs(3).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), newBooking())
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryCreateRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT free FROM teachers").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"free"}).AddRow(availabilityJSON(t, models.NewWeeklyAvailability(true))))
	mock.ExpectExec("UPDATE teachers SET free").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO bookings").WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), newBooking())
	assert.ErrorContains(t, err, "insert booking")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryCreateMapsUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT free FROM teachers").
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows([]string{"free"}).AddRow(availabilityJSON(t, models.NewWeeklyAvailability(true))))
	mock.ExpectExec("UPDATE teachers SET free").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO bookings").WillReturnError(&pq.Error{Code: uniqueViolation})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), newBooking())
	assert.ErrorIs(t, err, models.ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, teacher_id, day, start_time, client_name, client_phone, created_at FROM bookings ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "teacher_id", "day", "start_time", "client_name", "client_phone", "created_at"}).
			AddRow(1, 3, "wed", "14:00", "Ivan", "+7-916-1234567", now).
			AddRow(2, 1, "mon", "08:00", "Olga", "89161234567", now))

	bookings, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, bookings, 2)
	assert.Equal(t, "+7-916-1234567", bookings[0].ClientPhone)
	assert.Equal(t, "mon", bookings[1].Day)
	assert.NoError(t, mock.ExpectationsWereMet())
}

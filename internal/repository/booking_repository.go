package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/tutorbook/internal/models"
)

const uniqueViolation = "23505"

// BookingRepository persists bookings and flips tutor availability.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create marks the slot booked on the tutor row and inserts the booking in a
// single transaction. The tutor row is locked for the duration so concurrent
// submissions for the same tutor serialise.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin booking transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var free models.WeeklyAvailability
	const lockQuery = `SELECT free FROM teachers WHERE id = $1 FOR UPDATE`
	if err = tx.GetContext(ctx, &free, lockQuery, booking.TeacherID); err != nil {
		return err
	}
	if err = free.Book(booking.Day, booking.StartTime); err != nil {
		return err
	}

	const updateQuery = `UPDATE teachers SET free = $1 WHERE id = $2`
	if _, err = tx.ExecContext(ctx, updateQuery, free, booking.TeacherID); err != nil {
		return fmt.Errorf("update teacher availability: %w", err)
	}

	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now().UTC()
	}
	const insertQuery = `INSERT INTO bookings (teacher_id, day, start_time, client_name, client_phone, created_at)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err = tx.QueryRowxContext(ctx, insertQuery,
		booking.TeacherID, booking.Day, booking.StartTime, booking.ClientName, booking.ClientPhone, booking.CreatedAt,
	).Scan(&booking.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return models.ErrSlotTaken
		}
		return fmt.Errorf("insert booking: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit booking: %w", err)
	}
	return nil
}

// List returns bookings in submission order.
func (r *BookingRepository) List(ctx context.Context) ([]models.Booking, error) {
	const query = `SELECT id, teacher_id, day, start_time, client_name, client_phone, created_at FROM bookings ORDER BY id`
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, query); err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// FindByID fetches a booking. A missing booking yields sql.ErrNoRows.
func (r *BookingRepository) FindByID(ctx context.Context, id int64) (*models.Booking, error) {
	const query = `SELECT id, teacher_id, day, start_time, client_name, client_phone, created_at FROM bookings WHERE id = $1`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, err
	}
	return &booking, nil
}

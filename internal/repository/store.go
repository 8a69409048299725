package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutorbook/internal/models"
	"github.com/noah-isme/tutorbook/pkg/storage"
)

// GoalStore reads goals.
type GoalStore interface {
	List(ctx context.Context) ([]models.Goal, error)
	FindByID(ctx context.Context, id string) (*models.Goal, error)
}

// TeacherStore reads tutors with their current availability.
type TeacherStore interface {
	List(ctx context.Context) ([]models.Teacher, error)
	ListByGoal(ctx context.Context, goalID string) ([]models.Teacher, error)
	FindByID(ctx context.Context, id int) (*models.Teacher, error)
}

// BookingStore appends bookings and flips the booked slot atomically.
type BookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	List(ctx context.Context) ([]models.Booking, error)
	FindByID(ctx context.Context, id int64) (*models.Booking, error)
}

// LessonRequestStore appends lesson requests.
type LessonRequestStore interface {
	Create(ctx context.Context, req *models.LessonRequest) error
	List(ctx context.Context) ([]models.LessonRequest, error)
}

// Store bundles the repositories of one storage backend.
type Store struct {
	Driver   string
	Goals    GoalStore
	Teachers TeacherStore
	Bookings BookingStore
	Requests LessonRequestStore

	ping func(ctx context.Context) error
}

// Ping reports whether the backend is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

// NewFileStore loads the fixtures from store and serves records from JSON
// files next to them.
func NewFileStore(store *storage.LocalStorage) (*Store, error) {
	catalog, err := LoadFileCatalog(store)
	if err != nil {
		return nil, err
	}
	bookings := NewFileBookingRepository(store, catalog)
	return &Store{
		Driver:   "file",
		Goals:    NewFileGoalRepository(catalog),
		Teachers: NewFileTeacherRepository(catalog, bookings),
		Bookings: bookings,
		Requests: NewFileLessonRequestRepository(store),
		ping: func(ctx context.Context) error {
			if _, err := store.Read(GoalsFile); err != nil {
				return fmt.Errorf("data dir unreadable: %w", err)
			}
			return nil
		},
	}, nil
}

// NewPostgresStore serves everything from the relational schema.
func NewPostgresStore(db *sqlx.DB) *Store {
	return &Store{
		Driver:   "postgres",
		Goals:    NewGoalRepository(db),
		Teachers: NewTeacherRepository(db),
		Bookings: NewBookingRepository(db),
		Requests: NewLessonRequestRepository(db),
		ping:     db.PingContext,
	}
}

package repository

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/noah-isme/tutorbook/internal/models"
	"github.com/noah-isme/tutorbook/pkg/storage"
)

// recordFile is the on-disk layout of booking.json and request.json.
type recordFile[T any] struct {
	Records []T `json:"records"`
}

// loadRecords treats a missing or empty file as {"records": []}.
func loadRecords[T any](store *storage.LocalStorage, name string) ([]T, error) {
	raw, err := store.Read(name)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return []T{}, nil
	}
	var file recordFile[T]
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if file.Records == nil {
		file.Records = []T{}
	}
	return file.Records, nil
}

func saveRecords[T any](store *storage.LocalStorage, name string, records []T) error {
	payload, err := json.MarshalIndent(recordFile[T]{Records: records}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if _, err := store.Save(name, payload); err != nil {
		return err
	}
	return nil
}

// FileBookingRepository appends bookings to booking.json.
type FileBookingRepository struct {
	store   *storage.LocalStorage
	catalog *FileCatalog
	now     func() time.Time
}

// NewFileBookingRepository constructs a FileBookingRepository.
func NewFileBookingRepository(store *storage.LocalStorage, catalog *FileCatalog) *FileBookingRepository {
	return &FileBookingRepository{store: store, catalog: catalog, now: func() time.Time { return time.Now().UTC() }}
}

// Create checks the slot against the fixture table plus existing bookings and
// appends the booking, all inside the storage lock. The append is the flip:
// tutor availability in file mode is derived from booking.json.
func (r *FileBookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.Locked(func() error {
		bookings, err := loadRecords[models.Booking](r.store, BookingsFile)
		if err != nil {
			return err
		}
		teacher, ok := r.catalog.teacher(booking.TeacherID)
		if !ok {
			return sql.ErrNoRows
		}
		applyBookings(teacher.ID, teacher.Free, bookings)
		if err := teacher.Free.Book(booking.Day, booking.StartTime); err != nil {
			return err
		}

		booking.ID = nextBookingID(bookings)
		if booking.CreatedAt.IsZero() {
			booking.CreatedAt = r.now()
		}
		return saveRecords(r.store, BookingsFile, append(bookings, *booking))
	})
}

// List returns bookings in submission order.
func (r *FileBookingRepository) List(ctx context.Context) ([]models.Booking, error) {
	return loadRecords[models.Booking](r.store, BookingsFile)
}

// FindByID fetches a booking. A missing booking yields sql.ErrNoRows.
func (r *FileBookingRepository) FindByID(ctx context.Context, id int64) (*models.Booking, error) {
	bookings, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		if b.ID == id {
			booking := b
			return &booking, nil
		}
	}
	return nil, sql.ErrNoRows
}

func nextBookingID(bookings []models.Booking) int64 {
	var max int64
	for _, b := range bookings {
		if b.ID > max {
			max = b.ID
		}
	}
	return max + 1
}

// FileLessonRequestRepository appends lesson requests to request.json.
type FileLessonRequestRepository struct {
	store *storage.LocalStorage
	now   func() time.Time
}

// NewFileLessonRequestRepository constructs a FileLessonRequestRepository.
func NewFileLessonRequestRepository(store *storage.LocalStorage) *FileLessonRequestRepository {
	return &FileLessonRequestRepository{store: store, now: func() time.Time { return time.Now().UTC() }}
}

// Create appends the request inside the storage lock.
func (r *FileLessonRequestRepository) Create(ctx context.Context, req *models.LessonRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.store.Locked(func() error {
		requests, err := loadRecords[models.LessonRequest](r.store, RequestsFile)
		if err != nil {
			return err
		}
		var max int64
		for _, existing := range requests {
			if existing.ID > max {
				max = existing.ID
			}
		}
		req.ID = max + 1
		if req.CreatedAt.IsZero() {
			req.CreatedAt = r.now()
		}
		return saveRecords(r.store, RequestsFile, append(requests, *req))
	})
}

// List returns requests in submission order.
func (r *FileLessonRequestRepository) List(ctx context.Context) ([]models.LessonRequest, error) {
	return loadRecords[models.LessonRequest](r.store, RequestsFile)
}

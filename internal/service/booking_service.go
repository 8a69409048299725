package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorbook/internal/models"
	appErrors "github.com/noah-isme/tutorbook/pkg/errors"
)

type bookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	List(ctx context.Context) ([]models.Booking, error)
	FindByID(ctx context.Context, id int64) (*models.Booking, error)
}

// BookingForm is the booking page submission.
type BookingForm struct {
	TeacherID   string `form:"client_teacher" json:"teacher_id" validate:"required,number"`
	Weekday     string `form:"client_weekday" json:"weekday" validate:"required,weekday"`
	Time        string `form:"client_time" json:"time" validate:"required,timeofday"`
	ClientName  string `form:"client_name" json:"client_name" validate:"required,max=100"`
	ClientPhone string `form:"client_phone" json:"client_phone" validate:"required,phone"`
}

// SlotSelection is a validated, currently free slot of one tutor.
type SlotSelection struct {
	Teacher models.Teacher `json:"teacher"`
	Day     string         `json:"day"`
	DayName string         `json:"day_name"`
	Time    string         `json:"time"`
}

// BookingConfirmation is rendered after a successful booking.
type BookingConfirmation struct {
	Booking models.Booking `json:"booking"`
	Teacher models.Teacher `json:"teacher"`
	DayName string         `json:"day_name"`
}

// BookingService checks slots and records bookings.
type BookingService struct {
	repo      bookingRepository
	teachers  teacherRepository
	catalog   *CatalogService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBookingService constructs a BookingService. catalog and metrics may be nil.
func NewBookingService(repo bookingRepository, teachers teacherRepository, catalog *CatalogService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{repo: repo, teachers: teachers, catalog: catalog, metrics: metrics, validator: validate, logger: logger}
}

// CheckSlot resolves a slot from raw URL parts. Weekday and hour are checked
// against the fixed domain before the tutor is looked up: out-of-domain
// values are not found whatever the tutor id is. A busy slot is forbidden.
func (s *BookingService) CheckSlot(ctx context.Context, rawTeacherID, weekday, rawTime string) (*SlotSelection, error) {
	if !models.IsWeekday(weekday) {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown weekday %q", weekday))
	}
	hour, ok := models.ParseHourSlot(rawTime)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no lessons start at %q", rawTime))
	}
	id, err := parseTeacherID(rawTeacherID)
	if err != nil {
		return nil, err
	}

	teacher, err := s.teachers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if !teacher.Free.IsFree(weekday, hour) {
		return nil, slotUnavailable(teacher, weekday, hour)
	}

	return &SlotSelection{Teacher: *teacher, Day: weekday, DayName: models.WeekdayName(weekday), Time: hour}, nil
}

// Book validates the form and stores the booking, flipping the slot to busy.
func (s *BookingService) Book(ctx context.Context, form BookingForm) (*BookingConfirmation, error) {
	form.ClientName = strings.TrimSpace(form.ClientName)
	form.ClientPhone = strings.TrimSpace(form.ClientPhone)
	if hour, ok := models.ParseHourSlot(form.Time); ok {
		form.Time = hour
	}
	if err := validateForm(s.validator, form, "invalid booking form"); err != nil {
		return nil, err
	}

	slot, err := s.CheckSlot(ctx, form.TeacherID, form.Weekday, form.Time)
	if err != nil {
		return nil, err
	}

	booking := &models.Booking{
		TeacherID:   slot.Teacher.ID,
		Day:         slot.Day,
		StartTime:   slot.Time,
		ClientName:  form.ClientName,
		ClientPhone: form.ClientPhone,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		switch {
		case errors.Is(err, models.ErrSlotTaken):
			s.metrics.RecordBooking(false)
			return nil, slotUnavailable(&slot.Teacher, slot.Day, slot.Time)
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		case errors.Is(err, models.ErrSlotOutOfRange):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "slot not found")
		}
		s.logger.Error("failed to store booking", zap.Int("teacher_id", booking.TeacherID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store booking")
	}

	s.metrics.RecordBooking(true)
	if s.catalog != nil {
		s.catalog.InvalidateTeachers(ctx)
	}
	s.logger.Info("booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int("teacher_id", booking.TeacherID),
		zap.String("day", booking.Day),
		zap.String("start_time", booking.StartTime),
	)

	return &BookingConfirmation{Booking: *booking, Teacher: slot.Teacher, DayName: slot.DayName}, nil
}

// List returns all bookings in submission order.
func (s *BookingService) List(ctx context.Context) ([]models.Booking, error) {
	bookings, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	return bookings, nil
}

// Get returns a booking by id.
func (s *BookingService) Get(ctx context.Context, id int64) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	return booking, nil
}

func slotUnavailable(teacher *models.Teacher, day, hour string) error {
	return appErrors.Clone(appErrors.ErrSlotUnavailable,
		fmt.Sprintf("%s is not available on %s at %s", teacher.Name, models.WeekdayName(day), hour))
}

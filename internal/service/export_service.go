package service

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutorbook/internal/models"
	appErrors "github.com/noah-isme/tutorbook/pkg/errors"
	"github.com/noah-isme/tutorbook/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// ExportResult is a rendered export ready to be served.
type ExportResult struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the booking ledger as CSV or PDF.
type ExportService struct {
	bookings bookingRepository
	teachers teacherRepository
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers get defaults.
func NewExportService(bookings bookingRepository, teachers teacherRepository, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{bookings: bookings, teachers: teachers, csv: csv, pdf: pdf, logger: logger, now: time.Now}
}

// Bookings renders every booking in the requested format.
func (s *ExportService) Bookings(ctx context.Context, rawFormat string) (*ExportResult, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv or pdf")
	}

	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	teachers, err := s.teachers.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}

	data := bookingDataset(bookings, teachers)
	var body []byte
	switch format {
	case export.FormatPDF:
		body, err = s.pdf.Render(data)
	default:
		body, err = s.csv.Render(data)
	}
	if err != nil {
		s.logger.Error("failed to render booking export", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportResult{
		Filename:    format.Filename("bookings-" + s.now().UTC().Format("20060102")),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func bookingDataset(bookings []models.Booking, teachers []models.Teacher) export.Dataset {
	names := make(map[int]string, len(teachers))
	for _, t := range teachers {
		names[t.ID] = t.Name
	}
	data := export.Dataset{
		Title:   "Bookings",
		Headers: []string{"ID", "Teacher", "Day", "Time", "Client", "Phone", "Created"},
		Rows:    make([][]string, 0, len(bookings)),
	}
	for _, b := range bookings {
		data.Rows = append(data.Rows, []string{
			strconv.FormatInt(b.ID, 10),
			names[b.TeacherID],
			models.WeekdayName(b.Day),
			b.StartTime,
			b.ClientName,
			b.ClientPhone,
			b.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return data
}

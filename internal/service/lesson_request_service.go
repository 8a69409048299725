package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutorbook/internal/models"
	appErrors "github.com/noah-isme/tutorbook/pkg/errors"
)

type lessonRequestRepository interface {
	Create(ctx context.Context, req *models.LessonRequest) error
	List(ctx context.Context) ([]models.LessonRequest, error)
}

// LessonRequestForm is the "find me a tutor" submission.
type LessonRequestForm struct {
	Goal        string `form:"goal" json:"goal" validate:"required"`
	Time        string `form:"time" json:"time" validate:"required,timebucket"`
	ClientName  string `form:"client_name" json:"client_name" validate:"required,max=100"`
	ClientPhone string `form:"client_phone" json:"client_phone" validate:"required,phone"`
}

// RequestConfirmation is rendered after a lesson request is stored.
type RequestConfirmation struct {
	Request  models.LessonRequest `json:"request"`
	GoalText string               `json:"goal_text"`
	TimeText string               `json:"time_text"`
}

// LessonRequestService validates and stores lesson requests.
type LessonRequestService struct {
	repo      lessonRequestRepository
	goals     goalRepository
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLessonRequestService constructs a LessonRequestService.
func NewLessonRequestService(repo lessonRequestRepository, goals goalRepository, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *LessonRequestService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonRequestService{repo: repo, goals: goals, metrics: metrics, validator: validate, logger: logger}
}

// DefaultForm returns the empty form with its radio defaults selected.
func (s *LessonRequestService) DefaultForm() LessonRequestForm {
	return LessonRequestForm{Goal: models.DefaultGoal, Time: models.DefaultTimeBucket}
}

// Submit validates the form and appends the request.
func (s *LessonRequestService) Submit(ctx context.Context, form LessonRequestForm) (*RequestConfirmation, error) {
	form.ClientName = strings.TrimSpace(form.ClientName)
	form.ClientPhone = strings.TrimSpace(form.ClientPhone)
	if form.Goal == "" {
		form.Goal = models.DefaultGoal
	}
	if form.Time == "" {
		form.Time = models.DefaultTimeBucket
	}
	if err := validateForm(s.validator, form, "invalid lesson request"); err != nil {
		return nil, err
	}

	goal, err := s.goals.FindByID(ctx, form.Goal)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invalidForm(FieldErrors{"goal": "Choose one of the offered options."}, "invalid lesson request")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load goal")
	}
	timeText, _ := models.TimeBucketText(form.Time)

	req := &models.LessonRequest{
		Goal:        goal.ID,
		Time:        form.Time,
		ClientName:  form.ClientName,
		ClientPhone: form.ClientPhone,
	}
	if err := s.repo.Create(ctx, req); err != nil {
		s.logger.Error("failed to store lesson request", zap.String("goal", req.Goal), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store lesson request")
	}
	s.metrics.RecordLessonRequest()
	s.logger.Info("lesson request created", zap.Int64("request_id", req.ID), zap.String("goal", req.Goal))

	return &RequestConfirmation{Request: *req, GoalText: goal.Text, TimeText: timeText}, nil
}

// List returns all lesson requests in submission order.
func (s *LessonRequestService) List(ctx context.Context) ([]models.LessonRequest, error) {
	requests, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lesson requests")
	}
	return requests, nil
}

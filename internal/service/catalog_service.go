package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/tutorbook/internal/models"
	appErrors "github.com/noah-isme/tutorbook/pkg/errors"
)

type goalRepository interface {
	List(ctx context.Context) ([]models.Goal, error)
	FindByID(ctx context.Context, id string) (*models.Goal, error)
}

type teacherRepository interface {
	List(ctx context.Context) ([]models.Teacher, error)
	ListByGoal(ctx context.Context, goalID string) ([]models.Teacher, error)
	FindByID(ctx context.Context, id int) (*models.Teacher, error)
}

const (
	cacheKeyGoals         = "goals"
	cacheKeyTeachersAll   = "teachers:all"
	cacheKeyTeachersGoal  = "teachers:goal:%s"
	cacheKeyTeacher       = "teachers:id:%d"
	cachePatternTeachers  = "teachers:*"
	defaultHomeSampleSize = 6
)

// TeacherProfile is the data shown on a tutor's profile page.
type TeacherProfile struct {
	Teacher   models.Teacher        `json:"teacher"`
	Goals     []models.Goal         `json:"goals"`
	FreeTimes []models.DayFreeTimes `json:"free_times"`
}

// CatalogService serves read access to goals and tutors.
type CatalogService struct {
	goals      goalRepository
	teachers   teacherRepository
	cache      *CacheService
	logger     *zap.Logger
	sampleSize int
	shuffle    func(n int, swap func(i, j int))
}

// NewCatalogService constructs a CatalogService. cache may be nil.
func NewCatalogService(goals goalRepository, teachers teacherRepository, cache *CacheService, sampleSize int, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sampleSize <= 0 {
		sampleSize = defaultHomeSampleSize
	}
	return &CatalogService{
		goals:      goals,
		teachers:   teachers,
		cache:      cache,
		logger:     logger,
		sampleSize: sampleSize,
		shuffle:    rand.Shuffle,
	}
}

// Goals returns every goal ordered by code.
func (s *CatalogService) Goals(ctx context.Context) ([]models.Goal, error) {
	var goals []models.Goal
	if hit, _ := s.cache.Get(ctx, cacheKeyGoals, &goals); hit {
		return goals, nil
	}
	goals, err := s.goals.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list goals")
	}
	_ = s.cache.Set(ctx, cacheKeyGoals, goals, 0)
	return goals, nil
}

// Goal resolves a goal code. Unknown codes are not found.
func (s *CatalogService) Goal(ctx context.Context, id string) (*models.Goal, error) {
	goal, err := s.goals.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("goal %q not found", id))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load goal")
	}
	return goal, nil
}

// Sample returns a random selection of tutors for the home page.
func (s *CatalogService) Sample(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.Teachers(ctx, models.SortRandom)
	if err != nil {
		return nil, err
	}
	if len(teachers) > s.sampleSize {
		teachers = teachers[:s.sampleSize]
	}
	return teachers, nil
}

// Teachers lists every tutor in the requested order.
func (s *CatalogService) Teachers(ctx context.Context, order models.TeacherSort) ([]models.Teacher, error) {
	var teachers []models.Teacher
	if hit, _ := s.cache.Get(ctx, cacheKeyTeachersAll, &teachers); !hit {
		var err error
		teachers, err = s.teachers.List(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
		}
		_ = s.cache.Set(ctx, cacheKeyTeachersAll, teachers, 0)
	}
	s.sortTeachers(teachers, order)
	return teachers, nil
}

// TeachersByGoal returns the goal and its tutors, best rated first.
func (s *CatalogService) TeachersByGoal(ctx context.Context, goalID string) (*models.Goal, []models.Teacher, error) {
	goal, err := s.Goal(ctx, goalID)
	if err != nil {
		return nil, nil, err
	}
	key := fmt.Sprintf(cacheKeyTeachersGoal, goalID)
	var teachers []models.Teacher
	if hit, _ := s.cache.Get(ctx, key, &teachers); hit {
		return goal, teachers, nil
	}
	teachers, err = s.teachers.ListByGoal(ctx, goalID)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	_ = s.cache.Set(ctx, key, teachers, 0)
	return goal, teachers, nil
}

// Teacher returns a tutor by id.
func (s *CatalogService) Teacher(ctx context.Context, id int) (*models.Teacher, error) {
	key := fmt.Sprintf(cacheKeyTeacher, id)
	var cached models.Teacher
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}
	teacher, err := s.teachers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	_ = s.cache.Set(ctx, key, teacher, 0)
	return teacher, nil
}

// Profile builds the profile page for a raw teacher id taken from the URL.
func (s *CatalogService) Profile(ctx context.Context, rawID string) (*TeacherProfile, error) {
	id, err := parseTeacherID(rawID)
	if err != nil {
		return nil, err
	}
	teacher, err := s.Teacher(ctx, id)
	if err != nil {
		return nil, err
	}
	goals, err := s.Goals(ctx)
	if err != nil {
		return nil, err
	}
	profile := &TeacherProfile{
		Teacher:   *teacher,
		Goals:     make([]models.Goal, 0, len(teacher.Goals)),
		FreeTimes: teacher.Free.FreeTimesByDay(),
	}
	for _, g := range goals {
		if teacher.HasGoal(g.ID) {
			profile.Goals = append(profile.Goals, g)
		}
	}
	return profile, nil
}

// InvalidateTeachers drops cached tutor data after availability changes.
func (s *CatalogService) InvalidateTeachers(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, cachePatternTeachers); err != nil {
		s.logger.Warn("failed to invalidate teacher cache", zap.Error(err))
	}
}

func (s *CatalogService) sortTeachers(teachers []models.Teacher, order models.TeacherSort) {
	switch order {
	case models.SortRating:
		sort.SliceStable(teachers, func(i, j int) bool { return teachers[i].Rating > teachers[j].Rating })
	case models.SortPriceAsc:
		sort.SliceStable(teachers, func(i, j int) bool { return teachers[i].Price < teachers[j].Price })
	case models.SortPriceDesc:
		sort.SliceStable(teachers, func(i, j int) bool { return teachers[i].Price > teachers[j].Price })
	default:
		s.shuffle(len(teachers), func(i, j int) { teachers[i], teachers[j] = teachers[j], teachers[i] })
	}
}

func parseTeacherID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	return id, nil
}

package service

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/tutorbook/internal/models"
	appErrors "github.com/noah-isme/tutorbook/pkg/errors"
)

type mockGoalRepo struct {
	goals   []models.Goal
	listErr error
	calls   int
}

func (m *mockGoalRepo) List(ctx context.Context) ([]models.Goal, error) {
	m.calls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]models.Goal(nil), m.goals...), nil
}

func (m *mockGoalRepo) FindByID(ctx context.Context, id string) (*models.Goal, error) {
	for _, g := range m.goals {
		if g.ID == id {
			cp := g
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockTeacherRepo struct {
	items     []models.Teacher
	findErr   error
	listCalls int
}

func (m *mockTeacherRepo) List(ctx context.Context) ([]models.Teacher, error) {
	m.listCalls++
	out := make([]models.Teacher, len(m.items))
	for i, t := range m.items {
		t.Free = t.Free.Clone()
		out[i] = t
	}
	return out, nil
}

func (m *mockTeacherRepo) ListByGoal(ctx context.Context, goalID string) ([]models.Teacher, error) {
	var out []models.Teacher
	for _, t := range m.items {
		if t.HasGoal(goalID) {
			t.Free = t.Free.Clone()
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id int) (*models.Teacher, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	for _, t := range m.items {
		if t.ID == id {
			t.Free = t.Free.Clone()
			return &t, nil
		}
	}
	return nil, sql.ErrNoRows
}

// mockBookingRepo flips slots on the shared teacher repo the way both
// storage backends do.
type mockBookingRepo struct {
	mu        sync.Mutex
	teachers  *mockTeacherRepo
	records   []models.Booking
	createErr error
}

func (m *mockBookingRepo) Create(ctx context.Context, booking *models.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for i := range m.teachers.items {
		t := &m.teachers.items[i]
		if t.ID != booking.TeacherID {
			continue
		}
		if err := t.Free.Book(booking.Day, booking.StartTime); err != nil {
			return err
		}
		booking.ID = int64(len(m.records) + 1)
		booking.CreatedAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		m.records = append(m.records, *booking)
		return nil
	}
	return sql.ErrNoRows
}

func (m *mockBookingRepo) List(ctx context.Context) ([]models.Booking, error) {
	return append([]models.Booking{}, m.records...), nil
}

func (m *mockBookingRepo) FindByID(ctx context.Context, id int64) (*models.Booking, error) {
	for _, b := range m.records {
		if b.ID == id {
			cp := b
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

type mockRequestRepo struct {
	records   []models.LessonRequest
	createErr error
}

func (m *mockRequestRepo) Create(ctx context.Context, req *models.LessonRequest) error {
	if m.createErr != nil {
		return m.createErr
	}
	req.ID = int64(len(m.records) + 1)
	m.records = append(m.records, *req)
	return nil
}

func (m *mockRequestRepo) List(ctx context.Context) ([]models.LessonRequest, error) {
	return append([]models.LessonRequest{}, m.records...), nil
}

// memoryCache stores values as-is; the service only round-trips its own types.
type memoryCache struct {
	items   map[string]interface{}
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string]interface{}{}}
}

func (m *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	v, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	switch d := dest.(type) {
	case *[]models.Goal:
		*d = v.([]models.Goal)
	case *[]models.Teacher:
		*d = v.([]models.Teacher)
	case *models.Teacher:
		*d = *v.(*models.Teacher)
	}
	return nil
}

func (m *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.items[key] = value
	return nil
}

func (m *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range m.items {
		if strings.HasPrefix(k, prefix) {
			delete(m.items, k)
			m.deleted = append(m.deleted, k)
		}
	}
	return nil
}

func fixtureGoals() []models.Goal {
	return []models.Goal{
		{ID: "study", Text: "For school"},
		{ID: "travel", Text: "For travel"},
		{ID: "work", Text: "For work"},
	}
}

func fixtureTeachers() []models.Teacher {
	busy := models.NewWeeklyAvailability(true)
	busy["wed"]["16:00"] = false
	return []models.Teacher{
		{ID: 1, Name: "Anna", Rating: 4.5, Price: 900, Goals: []string{"travel"}, Free: models.NewWeeklyAvailability(true)},
		{ID: 2, Name: "Boris", Rating: 4.1, Price: 700, Goals: []string{"work"}, Free: models.NewWeeklyAvailability(false)},
		{ID: 3, Name: "Clara", Rating: 4.9, Price: 1300, Goals: []string{"travel", "study"}, Free: busy},
	}
}

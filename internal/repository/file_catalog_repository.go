package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/noah-isme/tutorbook/internal/models"
	"github.com/noah-isme/tutorbook/pkg/storage"
)

// Fixture and record file names inside the data directory.
const (
	GoalsFile    = "goals.json"
	TeachersFile = "teachers.json"
	BookingsFile = "booking.json"
	RequestsFile = "request.json"
)

// FileCatalog holds the goal and tutor fixtures, loaded once at startup.
type FileCatalog struct {
	goals    []models.Goal
	teachers []models.Teacher
}

// LoadFileCatalog reads goals.json and teachers.json and validates them.
func LoadFileCatalog(store *storage.LocalStorage) (*FileCatalog, error) {
	rawGoals, err := store.Read(GoalsFile)
	if err != nil {
		return nil, err
	}
	if rawGoals == nil {
		return nil, fmt.Errorf("fixture %s not found in %s", GoalsFile, store.Path(""))
	}
	var goalText map[string]string
	if err := json.Unmarshal(rawGoals, &goalText); err != nil {
		return nil, fmt.Errorf("decode %s: %w", GoalsFile, err)
	}
	goals := make([]models.Goal, 0, len(goalText))
	for id, text := range goalText {
		goals = append(goals, models.Goal{ID: id, Text: text})
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].ID < goals[j].ID })

	rawTeachers, err := store.Read(TeachersFile)
	if err != nil {
		return nil, err
	}
	if rawTeachers == nil {
		return nil, fmt.Errorf("fixture %s not found in %s", TeachersFile, store.Path(""))
	}
	var teachers []models.Teacher
	if err := json.Unmarshal(rawTeachers, &teachers); err != nil {
		return nil, fmt.Errorf("decode %s: %w", TeachersFile, err)
	}

	seen := make(map[int]struct{}, len(teachers))
	for i := range teachers {
		t := &teachers[i]
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate teacher id %d", TeachersFile, t.ID)
		}
		seen[t.ID] = struct{}{}
		if t.Free == nil {
			return nil, fmt.Errorf("%s: teacher %d has no availability", TeachersFile, t.ID)
		}
		if t.Goals == nil {
			t.Goals = []string{}
		}
		for _, g := range t.Goals {
			if _, ok := goalText[g]; !ok {
				return nil, fmt.Errorf("%s: teacher %d references unknown goal %q", TeachersFile, t.ID, g)
			}
		}
	}

	return &FileCatalog{goals: goals, teachers: teachers}, nil
}

// Goals returns a copy of the goal fixtures.
func (c *FileCatalog) Goals() []models.Goal {
	return append([]models.Goal(nil), c.goals...)
}

// Teachers returns deep copies of the tutor fixtures as seeded.
func (c *FileCatalog) Teachers() []models.Teacher {
	out := make([]models.Teacher, len(c.teachers))
	for i, t := range c.teachers {
		out[i] = copyTeacher(t)
	}
	return out
}

func (c *FileCatalog) teacher(id int) (models.Teacher, bool) {
	for _, t := range c.teachers {
		if t.ID == id {
			return copyTeacher(t), true
		}
	}
	return models.Teacher{}, false
}

func copyTeacher(t models.Teacher) models.Teacher {
	t.Goals = append([]string{}, t.Goals...)
	t.Free = t.Free.Clone()
	return t
}

// FileGoalRepository serves goals from the fixture catalog.
type FileGoalRepository struct {
	catalog *FileCatalog
}

// NewFileGoalRepository constructs a FileGoalRepository.
func NewFileGoalRepository(catalog *FileCatalog) *FileGoalRepository {
	return &FileGoalRepository{catalog: catalog}
}

// List returns all goals ordered by id.
func (r *FileGoalRepository) List(ctx context.Context) ([]models.Goal, error) {
	return r.catalog.Goals(), nil
}

// FindByID fetches a goal by code. A missing goal yields sql.ErrNoRows.
func (r *FileGoalRepository) FindByID(ctx context.Context, id string) (*models.Goal, error) {
	for _, g := range r.catalog.goals {
		if g.ID == id {
			goal := g
			return &goal, nil
		}
	}
	return nil, sql.ErrNoRows
}

// FileTeacherRepository serves tutors from the fixture catalog with the
// recorded bookings applied to their availability.
type FileTeacherRepository struct {
	catalog  *FileCatalog
	bookings *FileBookingRepository
}

// NewFileTeacherRepository constructs a FileTeacherRepository.
func NewFileTeacherRepository(catalog *FileCatalog, bookings *FileBookingRepository) *FileTeacherRepository {
	return &FileTeacherRepository{catalog: catalog, bookings: bookings}
}

// List returns every tutor ordered by id.
func (r *FileTeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	teachers := r.catalog.Teachers()
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].ID < teachers[j].ID })
	return r.withBookings(ctx, teachers)
}

// ListByGoal returns tutors linked to the goal, best rated first.
func (r *FileTeacherRepository) ListByGoal(ctx context.Context, goalID string) ([]models.Teacher, error) {
	var matched []models.Teacher
	for _, t := range r.catalog.Teachers() {
		if t.HasGoal(goalID) {
			matched = append(matched, t)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].Rating == matched[j].Rating {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].Rating > matched[j].Rating
	})
	return r.withBookings(ctx, matched)
}

// FindByID fetches a tutor. A missing tutor yields sql.ErrNoRows.
func (r *FileTeacherRepository) FindByID(ctx context.Context, id int) (*models.Teacher, error) {
	teacher, ok := r.catalog.teacher(id)
	if !ok {
		return nil, sql.ErrNoRows
	}
	list, err := r.withBookings(ctx, []models.Teacher{teacher})
	if err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *FileTeacherRepository) withBookings(ctx context.Context, teachers []models.Teacher) ([]models.Teacher, error) {
	if r.bookings == nil || len(teachers) == 0 {
		return teachers, nil
	}
	bookings, err := r.bookings.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range teachers {
		applyBookings(teachers[i].ID, teachers[i].Free, bookings)
	}
	return teachers, nil
}

// applyBookings marks every slot booked for teacherID as not free.
func applyBookings(teacherID int, free models.WeeklyAvailability, bookings []models.Booking) {
	for _, b := range bookings {
		if b.TeacherID != teacherID {
			continue
		}
		if hours, ok := free[b.Day]; ok {
			if _, ok := hours[b.StartTime]; ok {
				hours[b.StartTime] = false
			}
		}
	}
}

package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/tutorbook/internal/models"
)

const teacherColumns = `t.id, t.name, t.about, t.rating, t.picture, t.price, t.free`

// TeacherRepository manages persistence for tutors and their goal links.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns every tutor ordered by id.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	query := `SELECT ` + teacherColumns + ` FROM teachers t ORDER BY t.id`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	if err := r.attachGoals(ctx, teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}

// ListByGoal returns tutors linked to the goal, best rated first.
func (r *TeacherRepository) ListByGoal(ctx context.Context, goalID string) ([]models.Teacher, error) {
	query := `SELECT ` + teacherColumns + ` FROM teachers t
JOIN teachers_goals tg ON tg.teacher_id = t.id
WHERE tg.goal_id = $1 ORDER BY t.rating DESC, t.id`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, goalID); err != nil {
		return nil, fmt.Errorf("list teachers by goal: %w", err)
	}
	if err := r.attachGoals(ctx, teachers); err != nil {
		return nil, err
	}
	return teachers, nil
}

// FindByID fetches a tutor by id. A missing tutor yields sql.ErrNoRows.
func (r *TeacherRepository) FindByID(ctx context.Context, id int) (*models.Teacher, error) {
	query := `SELECT ` + teacherColumns + ` FROM teachers t WHERE t.id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	list := []models.Teacher{teacher}
	if err := r.attachGoals(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// CreateIfMissing inserts the tutor and its goal links unless the id exists.
func (r *TeacherRepository) CreateIfMissing(ctx context.Context, teacher models.Teacher) (created bool, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin teacher transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertTeacher = `INSERT INTO teachers (id, name, about, rating, picture, price, free)
VALUES (:id, :name, :about, :rating, :picture, :price, :free) ON CONFLICT (id) DO NOTHING`
	res, err := sqlx.NamedExecContext(ctx, tx, insertTeacher, teacher)
	if err != nil {
		return false, fmt.Errorf("insert teacher: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert teacher: %w", err)
	}
	if affected == 0 {
		if err = tx.Commit(); err != nil {
			return false, fmt.Errorf("commit teacher: %w", err)
		}
		return false, nil
	}

	const insertLink = `INSERT INTO teachers_goals (teacher_id, goal_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`
	for _, goalID := range teacher.Goals {
		if _, err = tx.ExecContext(ctx, insertLink, teacher.ID, goalID); err != nil {
			return false, fmt.Errorf("link teacher goal: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("commit teacher: %w", err)
	}
	return true, nil
}

func (r *TeacherRepository) attachGoals(ctx context.Context, teachers []models.Teacher) error {
	if len(teachers) == 0 {
		return nil
	}
	ids := make([]int64, len(teachers))
	index := make(map[int]int, len(teachers))
	for i := range teachers {
		ids[i] = int64(teachers[i].ID)
		index[teachers[i].ID] = i
		teachers[i].Goals = []string{}
	}

	const query = `SELECT teacher_id, goal_id FROM teachers_goals WHERE teacher_id = ANY($1) ORDER BY teacher_id, goal_id`
	var links []struct {
		TeacherID int    `db:"teacher_id"`
		GoalID    string `db:"goal_id"`
	}
	if err := r.db.SelectContext(ctx, &links, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("load teacher goals: %w", err)
	}
	for _, link := range links {
		if i, ok := index[link.TeacherID]; ok {
			teachers[i].Goals = append(teachers[i].Goals, link.GoalID)
		}
	}
	return nil
}

package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutorbook/internal/models"
)

// GoalRepository manages persistence for learning goals.
type GoalRepository struct {
	db *sqlx.DB
}

// NewGoalRepository constructs a GoalRepository.
func NewGoalRepository(db *sqlx.DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// List returns all goals ordered by id.
func (r *GoalRepository) List(ctx context.Context) ([]models.Goal, error) {
	const query = `SELECT id, text FROM goals ORDER BY id`
	var goals []models.Goal
	if err := r.db.SelectContext(ctx, &goals, query); err != nil {
		return nil, fmt.Errorf("list goals: %w", err)
	}
	return goals, nil
}

// FindByID fetches a goal by its code. A missing goal yields sql.ErrNoRows.
func (r *GoalRepository) FindByID(ctx context.Context, id string) (*models.Goal, error) {
	const query = `SELECT id, text FROM goals WHERE id = $1`
	var goal models.Goal
	if err := r.db.GetContext(ctx, &goal, query, id); err != nil {
		return nil, err
	}
	return &goal, nil
}

// CreateIfMissing inserts the goal unless its id already exists.
func (r *GoalRepository) CreateIfMissing(ctx context.Context, goal models.Goal) (bool, error) {
	const query = `INSERT INTO goals (id, text) VALUES (:id, :text) ON CONFLICT (id) DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, goal)
	if err != nil {
		return false, fmt.Errorf("create goal: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create goal: %w", err)
	}
	return affected > 0, nil
}

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tutorbook/internal/models"
)

// LessonRequestRepository persists "find me a tutor" requests.
type LessonRequestRepository struct {
	db *sqlx.DB
}

// NewLessonRequestRepository constructs a LessonRequestRepository.
func NewLessonRequestRepository(db *sqlx.DB) *LessonRequestRepository {
	return &LessonRequestRepository{db: db}
}

// Create inserts the request and fills in its generated id.
func (r *LessonRequestRepository) Create(ctx context.Context, req *models.LessonRequest) error {
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO requests (goal_id, time, client_name, client_phone, created_at)
VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, req.Goal, req.Time, req.ClientName, req.ClientPhone, req.CreatedAt).Scan(&req.ID); err != nil {
		return fmt.Errorf("create lesson request: %w", err)
	}
	return nil
}

// List returns requests in submission order.
func (r *LessonRequestRepository) List(ctx context.Context) ([]models.LessonRequest, error) {
	const query = `SELECT id, goal_id, time, client_name, client_phone, created_at FROM requests ORDER BY id`
	var requests []models.LessonRequest
	if err := r.db.SelectContext(ctx, &requests, query); err != nil {
		return nil, fmt.Errorf("list lesson requests: %w", err)
	}
	return requests, nil
}

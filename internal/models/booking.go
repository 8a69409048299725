package models

import "time"

// Booking is a confirmed reservation of one tutor slot.
type Booking struct {
	ID          int64     `db:"id" json:"id"`
	TeacherID   int       `db:"teacher_id" json:"teacher_id"`
	Day         string    `db:"day" json:"day"`
	StartTime   string    `db:"start_time" json:"start_time"`
	ClientName  string    `db:"client_name" json:"client_name"`
	ClientPhone string    `db:"client_phone" json:"client_phone"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// LessonRequest is an open "find me a tutor" submission.
type LessonRequest struct {
	ID          int64     `db:"id" json:"id"`
	Goal        string    `db:"goal_id" json:"goal"`
	Time        string    `db:"time" json:"time"`
	ClientName  string    `db:"client_name" json:"client_name"`
	ClientPhone string    `db:"client_phone" json:"client_phone"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// TimeBucket is one of the weekly-hours choices on the request form.
type TimeBucket struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// TimeBuckets lists the weekly-hours choices in display order.
var TimeBuckets = []TimeBucket{
	{ID: "1-2", Text: "1-2 hours a week"},
	{ID: "3-5", Text: "3-5 hours a week"},
	{ID: "5-7", Text: "5-7 hours a week"},
	{ID: "7-10", Text: "7-10 hours a week"},
}

// DefaultTimeBucket is preselected on the request form.
const DefaultTimeBucket = "1-2"

// DefaultGoal is preselected on the request form.
const DefaultGoal = "travel"

// TimeBucketText resolves a bucket id to its display text.
func TimeBucketText(id string) (string, bool) {
	for _, b := range TimeBuckets {
		if b.ID == id {
			return b.Text, true
		}
	}
	return "", false
}

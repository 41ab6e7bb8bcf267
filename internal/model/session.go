package model

import "time"

// Session is a single tutoring appointment. Dates travel as YYYY-MM-DD and
// times as zero-padded 24-hour HH:MM strings; both compare lexically.
type Session struct {
	ID          string        `json:"id"`
	TutorID     string        `json:"tutor_id"`
	StudentID   string        `json:"student_id"`
	Title       string        `json:"title"`
	SessionDate string        `json:"session_date"`
	StartTime   string        `json:"start_time"`
	EndTime     string        `json:"end_time"`
	Notes       *string       `json:"notes"`
	Status      SessionStatus `json:"status"`
	IsPaid      bool          `json:"is_paid"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// Default form values for a new session.
const (
	DefaultStartTime = "09:00"
	DefaultEndTime   = "10:00"
)

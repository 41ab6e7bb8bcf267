package model

import "time"

// Assignment maps one student account to the tutor serving it. A student
// has at most one assignment; reassignment overwrites tutor_id.
type Assignment struct {
	ID        string    `json:"id"`
	TutorID   string    `json:"tutor_id"`
	StudentID string    `json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}

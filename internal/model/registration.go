package model

import "time"

// Registration is the intake record submitted for a student. An account
// owns at most one registration (unique user_id).
type Registration struct {
	ID             string             `json:"id"`
	UserID         string             `json:"user_id"`
	ParentName     string             `json:"parent_name"`
	StudentName    string             `json:"student_name"`
	Phone          string             `json:"phone"`
	Email          string             `json:"email"`
	Service        Service            `json:"service"`
	Address        string             `json:"address"`
	MentalHealth   *string            `json:"mental_health"`  // optional accommodation notes
	Specifications *string            `json:"specifications"` // optional free text
	Status         RegistrationStatus `json:"status"`
	ContactStatus  ContactStatus      `json:"contact_status"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// NotSpecified fills the text fields of a placeholder registration.
const NotSpecified = "Non spécifié"

// MinimalRegistration builds the placeholder the back office creates when
// it sets a service on an account that never registered. The parent name
// falls back to the account email.
func MinimalRegistration(userID, email string, service Service) Registration {
	parent := email
	if parent == "" {
		parent = NotSpecified
	}
	return Registration{
		UserID:        userID,
		ParentName:    parent,
		StudentName:   NotSpecified,
		Phone:         NotSpecified,
		Email:         email,
		Service:       service,
		Address:       NotSpecified,
		Status:        RegistrationApproved,
		ContactStatus: ContactNotContacted,
	}
}

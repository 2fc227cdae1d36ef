package school

import "time"

// Roster entities reachable through the bulk-import pipeline. The admin
// console's per-entity CRUD screens live elsewhere; these carry just
// what an import row provides.

type Student struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	AdmissionNo   string    `json:"admission_no"`
	ClassName     string    `json:"class_name,omitempty"`
	GuardianEmail string    `json:"guardian_email,omitempty"`
	CreatedAt     time.Time `json:"created_at"` // UTC
}

type Teacher struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Subject   string    `json:"subject,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Guardian struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Class struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Section   string    `json:"section,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Subject struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultMedicationForm  = "tablet"
	DefaultMedicationColor = "#4A90E2"
)

// Medication is a row of the medications table. Rows are never deleted by
// the client; IsActive=false hides them.
type Medication struct {
	ID           uuid.UUID `json:"id"`
	ProfileID    uuid.UUID `json:"profile_id"`
	Name         string    `json:"name"`
	Form         string    `json:"form"`
	Dosage       *string   `json:"dosage"`
	DosageUnit   *string   `json:"dosage_unit"`
	DosageAmount *float64  `json:"dosage_amount"`
	Color        string    `json:"color"`
	Notes        *string   `json:"notes"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewMedication is the insert payload for medications.
type NewMedication struct {
	ProfileID    uuid.UUID `json:"profile_id"`
	Name         string    `json:"name"`
	Form         string    `json:"form"`
	Dosage       *string   `json:"dosage,omitempty"`
	DosageUnit   *string   `json:"dosage_unit,omitempty"`
	DosageAmount *float64  `json:"dosage_amount,omitempty"`
	Color        string    `json:"color"`
	Notes        *string   `json:"notes,omitempty"`
	IsActive     bool      `json:"is_active"`
}

// WithDefaults fills the form and color when they are blank.
func (m NewMedication) WithDefaults() NewMedication {
	if m.Form == "" {
		m.Form = DefaultMedicationForm
	}
	if m.Color == "" {
		m.Color = DefaultMedicationColor
	}
	return m
}

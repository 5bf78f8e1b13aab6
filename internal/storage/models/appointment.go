// Package models contains the domain models for the application.
package models

import (
	"time"
)

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

// AppointmentStatus constants
const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
)

// Appointment is a normalized booking as served to the dashboard.
type Appointment struct {
	ID          string            `json:"id"`
	ClientName  string            `json:"client_name"`
	PhoneNumber string            `json:"phone_number"`
	HaircutType string            `json:"haircut_type"`
	Date        time.Time         `json:"date"`
	Duration    int               `json:"duration"` // minutes
	Price       float64           `json:"price"`
	Cost        float64           `json:"cost"` // estimated from haircut type
	Status      AppointmentStatus `json:"status"`
}

// IsCompleted reports whether the appointment has been served.
func (a Appointment) IsCompleted() bool {
	return a.Status == StatusCompleted
}

// Expense is a single spending entry reported by the webhook.
type Expense struct {
	Date   time.Time `json:"date"`
	Amount float64   `json:"amount"`
}

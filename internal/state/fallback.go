package state

import (
	"time"

	"github.com/barber-dashboard/backend/internal/storage/models"
)

// FallbackAppointments returns the demo appointments shown before any
// webhook data has been loaded.
func FallbackAppointments(loc *time.Location) []models.Appointment {
	if loc == nil {
		loc = time.Local
	}
	return []models.Appointment{
		{
			ID:          "1",
			ClientName:  "John Smith",
			PhoneNumber: "(555) 123-4567",
			HaircutType: "Burst Fade",
			Date:        time.Date(2025, time.July, 20, 14, 30, 0, 0, loc),
			Duration:    45,
			Price:       35,
			Cost:        8,
			Status:      models.StatusScheduled,
		},
		{
			ID:          "2",
			ClientName:  "Mike Johnson",
			PhoneNumber: "(555) 987-6543",
			HaircutType: "Buzz Cut",
			Date:        time.Date(2025, time.July, 22, 10, 0, 0, 0, loc),
			Duration:    25,
			Price:       25,
			Cost:        5,
			Status:      models.StatusCompleted,
		},
	}
}

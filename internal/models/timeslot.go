package models

import "fmt"

// BaseTimeSlot identifies one teaching period within the week.
type BaseTimeSlot struct {
	DayOfWeek int `json:"day_of_week"`
	Period    int `json:"period"`
}

// Key renders a stable identifier for map keys and diagnostics.
func (s BaseTimeSlot) Key() string {
	return fmt.Sprintf("%d-%d", s.DayOfWeek, s.Period)
}

// ClassTimeSlot pairs a base period with a specific class.
type ClassTimeSlot struct {
	BaseTimeSlot
	ClassID     string `json:"class_id"`
	IsAvailable bool   `json:"is_available"`
}

package model

import "time"

// Employer is a workplace the user has registered. The classifier only reads it.
type Employer struct {
	CreatedAt     time.Time
	HourlyWage    *int64
	MonthlySalary *int64
	ID            string
	UserID        string
	Name          string
	IsPrimary     bool
}

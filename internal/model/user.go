package model

import "time"

// User owns the schedule entered through one submission. A user row
// only exists while at least one of its tasks does; the delete cascade
// removes it together with its last task.
type User struct {
	ID        uint `gorm:"primaryKey"`
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins first and last name for display.
func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

package model

import "time"

// Task is the unit of deletion: the only entity a user removes
// directly. It references both its activity and, redundantly, the
// owning user so per-user counts never need a join.
type Task struct {
	ID          uint `gorm:"primaryKey"`
	UserID      uint `gorm:"index"`
	ActivityID  uint `gorm:"index"`
	Title       string
	Description string
	Date        time.Time
	Time        *string // optional "HH:MM"
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

package model

import "time"

// Activity categories offered by the schedule form.
const (
	CategorySchool  = "School"
	CategoryEvent   = "Event"
	CategoryHangout = "Hangout"
	CategoryTravel  = "Travel"
	CategoryOther   = "Other"
)

// Activity priorities.
const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
)

// Activity statuses. Status lives on the activity, not the task, so
// changing it is visible on every task of the activity.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
)

// Categories lists the allowed category values in form order.
func Categories() []string {
	return []string{CategorySchool, CategoryEvent, CategoryHangout, CategoryTravel, CategoryOther}
}

// Priorities lists the allowed priority values in form order.
func Priorities() []string {
	return []string{PriorityLow, PriorityMedium, PriorityHigh}
}

// Statuses lists the allowed status values in form order.
func Statuses() []string {
	return []string{StatusPending, StatusInProgress, StatusDone}
}

// ValidCategory reports whether v is one of the allowed categories.
func ValidCategory(v string) bool { return contains(Categories(), v) }

// ValidPriority reports whether v is one of the allowed priorities.
func ValidPriority(v string) bool { return contains(Priorities(), v) }

// ValidStatus reports whether v is one of the allowed statuses.
func ValidStatus(v string) bool { return contains(Statuses(), v) }

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Activity groups the tasks of one submission under a name, category,
// priority and shared status. Like User, it is removed by the cascade
// once its last task is deleted.
type Activity struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index"`
	Name      string
	Category  string
	Priority  string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
	Tasks     []Task `gorm:"foreignKey:ActivityID"`
}

package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"schedule-planner/internal/model"
)

// DashboardStats aggregates the counters shown on the dashboard. User
// and activity counts are derived from the task table on purpose: a
// parent row that somehow survived without tasks must not show up.
type DashboardStats struct {
	ActiveUsers      int64
	ActiveActivities int64
	TotalTasks       int64
	UpcomingTasks    int64
}

// ScheduleRow is one task joined with its activity and owner, the shape
// every listing and report detail works with.
type ScheduleRow struct {
	TaskID       uint
	Title        string
	Description  string
	Date         time.Time
	Time         *string
	ActivityID   uint
	ActivityName string
	Category     string
	Priority     string
	Status       string
	UserID       uint
	FirstName    string
	LastName     string
}

// GroupCount is one bucket of a grouped task-count report.
type GroupCount struct {
	Label string
	Tasks int64
}

// UserSummary counts a user's distinct activities and tasks.
type UserSummary struct {
	FirstName  string
	LastName   string
	Activities int64
	Tasks      int64
}

// ReportRepository serves the read-only dashboard and report queries.
type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

const scheduleColumns = `tasks.id AS task_id, tasks.title AS title, tasks.description AS description,
	tasks.date AS date, tasks.time AS time,
	activities.id AS activity_id, activities.name AS activity_name,
	activities.category AS category, activities.priority AS priority, activities.status AS status,
	users.id AS user_id, users.first_name AS first_name, users.last_name AS last_name`

func (r *ReportRepository) joined(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&model.Task{}).
		Select(scheduleColumns).
		Joins("JOIN activities ON activities.id = tasks.activity_id").
		Joins("JOIN users ON users.id = tasks.user_id")
}

// DashboardStats returns the four dashboard counters as of now.
func (r *ReportRepository) DashboardStats(ctx context.Context, now time.Time) (DashboardStats, error) {
	var stats DashboardStats
	db := r.db.WithContext(ctx)

	if err := db.Model(&model.Task{}).Distinct("user_id").Count(&stats.ActiveUsers).Error; err != nil {
		return stats, fmt.Errorf("count active users: %w", err)
	}
	if err := db.Model(&model.Task{}).Distinct("activity_id").Count(&stats.ActiveActivities).Error; err != nil {
		return stats, fmt.Errorf("count active activities: %w", err)
	}
	if err := db.Model(&model.Task{}).Count(&stats.TotalTasks).Error; err != nil {
		return stats, fmt.Errorf("count tasks: %w", err)
	}
	if err := db.Model(&model.Task{}).Where("date >= ?", startOfDay(now)).
		Count(&stats.UpcomingTasks).Error; err != nil {
		return stats, fmt.Errorf("count upcoming tasks: %w", err)
	}

	return stats, nil
}

// ListSchedules returns joined rows ordered by most recently created
// task first. A limit of 0 means no limit.
func (r *ReportRepository) ListSchedules(ctx context.Context, limit int) ([]ScheduleRow, error) {
	query := r.joined(ctx).Order("tasks.id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []ScheduleRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return rows, nil
}

// ScheduleByTask returns the joined row for one task id.
func (r *ReportRepository) ScheduleByTask(ctx context.Context, taskID uint) (ScheduleRow, error) {
	var rows []ScheduleRow
	if err := r.joined(ctx).Where("tasks.id = ?", taskID).Limit(1).Find(&rows).Error; err != nil {
		return ScheduleRow{}, fmt.Errorf("load schedule row: %w", err)
	}
	if len(rows) == 0 {
		return ScheduleRow{}, ErrTaskNotFound
	}
	return rows[0], nil
}

// TasksByStatus counts tasks grouped by their activity's status.
func (r *ReportRepository) TasksByStatus(ctx context.Context) ([]GroupCount, error) {
	return r.groupedByActivityColumn(ctx, "status", "")
}

// TasksByPriority counts tasks grouped by priority, High first.
func (r *ReportRepository) TasksByPriority(ctx context.Context) ([]GroupCount, error) {
	order := "CASE activities.priority WHEN 'High' THEN 0 WHEN 'Medium' THEN 1 ELSE 2 END"
	return r.groupedByActivityColumn(ctx, "priority", order)
}

// TasksByCategory counts tasks grouped by category.
func (r *ReportRepository) TasksByCategory(ctx context.Context) ([]GroupCount, error) {
	return r.groupedByActivityColumn(ctx, "category", "")
}

func (r *ReportRepository) groupedByActivityColumn(ctx context.Context, column, order string) ([]GroupCount, error) {
	query := r.db.WithContext(ctx).Model(&model.Activity{}).
		Select(fmt.Sprintf("activities.%s AS label, COUNT(tasks.id) AS tasks", column)).
		Joins("JOIN tasks ON tasks.activity_id = activities.id").
		Group(fmt.Sprintf("activities.%s", column))
	if order != "" {
		query = query.Order(order)
	}

	var counts []GroupCount
	if err := query.Find(&counts).Error; err != nil {
		return nil, fmt.Errorf("group tasks by %s: %w", column, err)
	}
	return counts, nil
}

// UserSummaries lists every user with distinct activity and task
// counts.
func (r *ReportRepository) UserSummaries(ctx context.Context) ([]UserSummary, error) {
	var summaries []UserSummary
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Select(`users.first_name AS first_name, users.last_name AS last_name,
			COUNT(DISTINCT activities.id) AS activities, COUNT(DISTINCT tasks.id) AS tasks`).
		Joins("LEFT JOIN activities ON activities.user_id = users.id").
		Joins("LEFT JOIN tasks ON tasks.user_id = users.id").
		Group("users.id").
		Find(&summaries).Error; err != nil {
		return nil, fmt.Errorf("summarize users: %w", err)
	}
	return summaries, nil
}

// UpcomingDeadlines returns today's and future tasks, earliest first.
// A limit of 0 means no limit.
func (r *ReportRepository) UpcomingDeadlines(ctx context.Context, now time.Time, limit int) ([]ScheduleRow, error) {
	query := r.joined(ctx).
		Where("tasks.date >= ?", startOfDay(now)).
		Order("tasks.date ASC, tasks.time ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var rows []ScheduleRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list upcoming deadlines: %w", err)
	}
	return rows, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"schedule-planner/internal/model"
)

// NewTask carries the task fields of one schedule submission.
type NewTask struct {
	Title       string
	Description string
	Date        time.Time
	Time        *string
}

// NewActivity carries one activity of a submission together with its
// tasks.
type NewActivity struct {
	Name     string
	Category string
	Priority string
	Status   string
	Tasks    []NewTask
}

// TaskUpdate carries the editable fields across all three rows behind a
// task: its owner, its activity and the task itself.
type TaskUpdate struct {
	FirstName    string
	LastName     string
	ActivityName string
	Category     string
	Priority     string
	Status       string
	Title        string
	Description  string
	Date         time.Time
	Time         *string
}

// CascadeResult reports which parent rows a task deletion took with it.
type CascadeResult struct {
	UserID          uint
	ActivityID      uint
	UserDeleted     bool
	ActivityDeleted bool
}

// ScheduleRepository owns every mutation of the users/activities/tasks
// tables. All writes run inside a transaction and roll back as a whole
// on any failure.
type ScheduleRepository struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewScheduleRepository(db *gorm.DB, log zerolog.Logger) *ScheduleRepository {
	return &ScheduleRepository{db: db, log: log}
}

// CreateSchedule inserts one user, then each activity, then each task,
// in that order so children always reference committed parents. The
// whole submission commits or rolls back together.
func (r *ScheduleRepository) CreateSchedule(ctx context.Context, firstName, lastName string, activities []NewActivity) (uint, error) {
	var userID uint

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user := model.User{FirstName: firstName, LastName: lastName}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		for _, act := range activities {
			activity := model.Activity{
				UserID:   user.ID,
				Name:     act.Name,
				Category: act.Category,
				Priority: act.Priority,
				Status:   act.Status,
			}
			if err := tx.Create(&activity).Error; err != nil {
				return fmt.Errorf("create activity: %w", err)
			}

			for _, t := range act.Tasks {
				task := model.Task{
					UserID:      user.ID,
					ActivityID:  activity.ID,
					Title:       t.Title,
					Description: t.Description,
					Date:        t.Date,
					Time:        t.Time,
				}
				if err := tx.Create(&task).Error; err != nil {
					return fmt.Errorf("create task: %w", err)
				}
			}
		}

		userID = user.ID
		return nil
	})
	if err != nil {
		return 0, err
	}

	return userID, nil
}

// UpdateTask rewrites the user, activity and task rows behind taskID,
// in that order, inside one transaction.
func (r *ScheduleRepository) UpdateTask(ctx context.Context, taskID uint, input TaskUpdate) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := resolveTask(tx, taskID)
		if err != nil {
			return err
		}

		if err := tx.Model(&model.User{}).Where("id = ?", task.UserID).Updates(map[string]any{
			"first_name": input.FirstName,
			"last_name":  input.LastName,
		}).Error; err != nil {
			return fmt.Errorf("update user: %w", err)
		}

		if err := tx.Model(&model.Activity{}).Where("id = ?", task.ActivityID).Updates(map[string]any{
			"name":     input.ActivityName,
			"category": input.Category,
			"priority": input.Priority,
			"status":   input.Status,
		}).Error; err != nil {
			return fmt.Errorf("update activity: %w", err)
		}

		if err := tx.Model(&model.Task{}).Where("id = ?", task.ID).Updates(map[string]any{
			"title":       input.Title,
			"description": input.Description,
			"date":        input.Date,
			"time":        input.Time,
		}).Error; err != nil {
			return fmt.Errorf("update task: %w", err)
		}

		return nil
	})
}

// SetActivityStatus resolves taskID to its activity and updates that
// activity's status. Status lives on the activity, so this changes the
// displayed status of every sibling task as well.
func (r *ScheduleRepository) SetActivityStatus(ctx context.Context, taskID uint, status string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := resolveTask(tx, taskID)
		if err != nil {
			return err
		}

		if err := tx.Model(&model.Activity{}).Where("id = ?", task.ActivityID).
			Update("status", status).Error; err != nil {
			return fmt.Errorf("update activity status: %w", err)
		}

		return nil
	})
}

// DeleteTaskCascade removes a task and whichever of its parents are
// left without tasks afterwards:
//
//  1. resolve (user_id, activity_id) for the task; a missing row is
//     ErrTaskNotFound with nothing touched,
//  2. delete the task,
//  3. count the user's remaining tasks and delete the user at zero,
//  4. same for the activity.
//
// All four steps share one transaction; any failure undoes everything.
func (r *ScheduleRepository) DeleteTaskCascade(ctx context.Context, taskID uint) (CascadeResult, error) {
	var res CascadeResult

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		task, err := resolveTask(tx, taskID)
		if err != nil {
			return err
		}
		res.UserID = task.UserID
		res.ActivityID = task.ActivityID

		if err := tx.Delete(&model.Task{}, task.ID).Error; err != nil {
			return fmt.Errorf("delete task: %w", err)
		}

		// Counts run after the delete so the removed task no longer
		// keeps its parents alive.
		var remaining int64
		if err := tx.Model(&model.Task{}).Where("user_id = ?", task.UserID).
			Count(&remaining).Error; err != nil {
			return fmt.Errorf("count user tasks: %w", err)
		}
		if remaining == 0 {
			if err := tx.Delete(&model.User{}, task.UserID).Error; err != nil {
				return fmt.Errorf("delete orphaned user: %w", err)
			}
			res.UserDeleted = true
		}

		if err := tx.Model(&model.Task{}).Where("activity_id = ?", task.ActivityID).
			Count(&remaining).Error; err != nil {
			return fmt.Errorf("count activity tasks: %w", err)
		}
		if remaining == 0 {
			if err := tx.Delete(&model.Activity{}, task.ActivityID).Error; err != nil {
				return fmt.Errorf("delete orphaned activity: %w", err)
			}
			res.ActivityDeleted = true
		}

		return nil
	})
	if err != nil {
		return CascadeResult{}, err
	}

	r.log.Info().
		Uint("task_id", taskID).
		Bool("user_deleted", res.UserDeleted).
		Bool("activity_deleted", res.ActivityDeleted).
		Msg("task deleted")

	return res, nil
}

// ResetAutoIncrement rewinds the generated-id counters of all three
// tables so ids stay low after deletions. Purely cosmetic and best
// effort: failures are logged, never returned. Must only run after a
// delete's transaction has committed, never alongside inserts.
func (r *ScheduleRepository) ResetAutoIncrement(ctx context.Context) {
	for _, table := range []string{"users", "activities", "tasks"} {
		if err := r.db.WithContext(ctx).
			Exec("UPDATE sqlite_sequence SET seq = 0 WHERE name = ?", table).Error; err != nil {
			r.log.Warn().Err(err).Str("table", table).Msg("reset autoincrement failed")
		}
	}
}

func resolveTask(tx *gorm.DB, taskID uint) (model.Task, error) {
	var task model.Task
	if err := tx.Select("id", "user_id", "activity_id").First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return task, ErrTaskNotFound
		}
		return task, fmt.Errorf("resolve task: %w", err)
	}
	return task, nil
}

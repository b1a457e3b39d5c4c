package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"schedule-planner/internal/model"
	"schedule-planner/internal/repository"
)

// TaskInput is one task of a schedule submission.
type TaskInput struct {
	Title       string
	Description string
	Date        time.Time
	Time        string // optional "HH:MM"
}

// ActivityInput is one activity of a submission with its tasks.
type ActivityInput struct {
	Name     string
	Category string
	Priority string
	Status   string
	Tasks    []TaskInput
}

// ScheduleInput is a full submission: one user plus their activities.
type ScheduleInput struct {
	FirstName  string
	LastName   string
	Activities []ActivityInput
}

// UpdateInput carries the editable fields of the three rows behind a
// task.
type UpdateInput struct {
	FirstName    string
	LastName     string
	ActivityName string
	Category     string
	Priority     string
	Status       string
	Title        string
	Description  string
	Date         time.Time
	Time         string
}

// ValidationError reports a missing or invalid field before anything is
// written. Activity and Task are 1-based indexes into the submission so
// the caller can point at the offending form entry; zero means the
// field is not tied to that level.
type ValidationError struct {
	Msg      string
	Activity int
	Task     int
}

func (e *ValidationError) Error() string {
	switch {
	case e.Activity > 0 && e.Task > 0:
		return fmt.Sprintf("activity #%d, task #%d: %s", e.Activity, e.Task, e.Msg)
	case e.Activity > 0:
		return fmt.Sprintf("activity #%d: %s", e.Activity, e.Msg)
	default:
		return e.Msg
	}
}

// ScheduleService validates submissions and drives the repository
// mutations. Validation always runs before the first write, so a
// rejected submission leaves no rows behind.
type ScheduleService struct {
	repo *repository.ScheduleRepository
	log  zerolog.Logger
}

func NewScheduleService(repo *repository.ScheduleRepository, log zerolog.Logger) *ScheduleService {
	return &ScheduleService{repo: repo, log: log}
}

// CreateSchedule validates the submission and writes it in one
// transaction. Returns the new user's id.
func (s *ScheduleService) CreateSchedule(ctx context.Context, input ScheduleInput) (uint, error) {
	if err := validateSchedule(input); err != nil {
		return 0, err
	}

	activities := make([]repository.NewActivity, 0, len(input.Activities))
	for _, act := range input.Activities {
		tasks := make([]repository.NewTask, 0, len(act.Tasks))
		for _, t := range act.Tasks {
			tasks = append(tasks, repository.NewTask{
				Title:       strings.TrimSpace(t.Title),
				Description: strings.TrimSpace(t.Description),
				Date:        normalizeDate(t.Date),
				Time:        normalizeTime(t.Time),
			})
		}
		activities = append(activities, repository.NewActivity{
			Name:     strings.TrimSpace(act.Name),
			Category: act.Category,
			Priority: act.Priority,
			Status:   act.Status,
			Tasks:    tasks,
		})
	}

	userID, err := s.repo.CreateSchedule(ctx, strings.TrimSpace(input.FirstName), strings.TrimSpace(input.LastName), activities)
	if err != nil {
		return 0, err
	}

	s.log.Info().Uint("user_id", userID).Int("activities", len(activities)).Msg("schedule created")
	return userID, nil
}

// UpdateTask re-validates the edited fields and rewrites the user,
// activity and task rows behind taskID.
func (s *ScheduleService) UpdateTask(ctx context.Context, taskID uint, input UpdateInput) error {
	if err := validateUpdate(input); err != nil {
		return err
	}

	return s.repo.UpdateTask(ctx, taskID, repository.TaskUpdate{
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		ActivityName: strings.TrimSpace(input.ActivityName),
		Category:     input.Category,
		Priority:     input.Priority,
		Status:       input.Status,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Date:         normalizeDate(input.Date),
		Time:         normalizeTime(input.Time),
	})
}

// SetStatus changes the status of the activity behind taskID. Every
// task sharing the activity shows the new status afterwards.
func (s *ScheduleService) SetStatus(ctx context.Context, taskID uint, status string) error {
	if !model.ValidStatus(status) {
		return &ValidationError{Msg: fmt.Sprintf("unknown status %q", status)}
	}
	return s.repo.SetActivityStatus(ctx, taskID, status)
}

// DeleteTask runs the cascade delete for taskID and, once the
// transaction has committed, rewinds the id counters. The reset is
// cosmetic and never turns a successful delete into a failure.
func (s *ScheduleService) DeleteTask(ctx context.Context, taskID uint) (repository.CascadeResult, error) {
	res, err := s.repo.DeleteTaskCascade(ctx, taskID)
	if err != nil {
		return res, err
	}

	s.repo.ResetAutoIncrement(ctx)
	return res, nil
}

func validateSchedule(input ScheduleInput) error {
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return &ValidationError{Msg: "first and last name are required"}
	}
	if len(input.Activities) == 0 {
		return &ValidationError{Msg: "at least one activity is required"}
	}

	for i, act := range input.Activities {
		idx := i + 1
		if err := validateActivityFields(act.Name, act.Category, act.Priority, act.Status, idx); err != nil {
			return err
		}
		if len(act.Tasks) == 0 {
			return &ValidationError{Msg: "at least one task is required", Activity: idx}
		}
		for j, task := range act.Tasks {
			if err := validateTaskFields(task.Title, task.Date, task.Time, idx, j+1); err != nil {
				return err
			}
		}
	}

	return nil
}

func validateUpdate(input UpdateInput) error {
	if strings.TrimSpace(input.FirstName) == "" || strings.TrimSpace(input.LastName) == "" {
		return &ValidationError{Msg: "first and last name are required"}
	}
	if err := validateActivityFields(input.ActivityName, input.Category, input.Priority, input.Status, 0); err != nil {
		return err
	}
	return validateTaskFields(input.Title, input.Date, input.Time, 0, 0)
}

func validateActivityFields(name, category, priority, status string, activity int) error {
	if strings.TrimSpace(name) == "" {
		return &ValidationError{Msg: "activity name is required", Activity: activity}
	}
	if !model.ValidCategory(category) {
		return &ValidationError{Msg: fmt.Sprintf("unknown category %q", category), Activity: activity}
	}
	if !model.ValidPriority(priority) {
		return &ValidationError{Msg: fmt.Sprintf("unknown priority %q", priority), Activity: activity}
	}
	if !model.ValidStatus(status) {
		return &ValidationError{Msg: fmt.Sprintf("unknown status %q", status), Activity: activity}
	}
	return nil
}

func validateTaskFields(title string, date time.Time, clock string, activity, task int) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Msg: "task title is required", Activity: activity, Task: task}
	}
	if date.IsZero() {
		return &ValidationError{Msg: "task date is required", Activity: activity, Task: task}
	}
	if clock = strings.TrimSpace(clock); clock != "" {
		if _, err := time.Parse("15:04", clock); err != nil {
			return &ValidationError{Msg: fmt.Sprintf("invalid time %q, expected HH:MM", clock), Activity: activity, Task: task}
		}
	}
	return nil
}

func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func normalizeTime(clock string) *string {
	clock = strings.TrimSpace(clock)
	if clock == "" {
		return nil
	}
	return &clock
}

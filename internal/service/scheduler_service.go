package service

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulerService wraps cron-based background jobs (currently the
// upcoming-deadlines digest).
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	return &SchedulerService{
		cron: cron.New(cron.WithLocation(loc), cron.WithSeconds()),
	}
}

// ScheduleInterval registers a job that runs every interval. Anything
// below one second is rejected rather than rounded up.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	if interval < time.Second {
		return 0, fmt.Errorf("interval %s is too short", interval)
	}
	return s.cron.AddFunc("@every "+interval.String(), job)
}

// ScheduleDaily registers a job at the given "HH:MM" wall-clock time
// every day.
func (s *SchedulerService) ScheduleDaily(clock string, job func()) (cron.EntryID, error) {
	spec, err := dailySpec(clock)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(spec, job)
}

// dailySpec converts "HH:MM" into a six-field cron expression firing
// once a day at that time.
func dailySpec(clock string) (string, error) {
	at, err := time.Parse("15:04", clock)
	if err != nil {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", clock)
	}
	return fmt.Sprintf("0 %d %d * * *", at.Minute(), at.Hour()), nil
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

// Stop halts scheduling and waits for running jobs to finish.
func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

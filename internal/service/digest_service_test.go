package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"schedule-planner/internal/model"
	"schedule-planner/internal/repository"
)

func newTestDigestService(t *testing.T) (*DigestService, *ScheduleService) {
	t.Helper()
	db := newTestDB(t)
	scheduleRepo := repository.NewScheduleRepository(db, zerolog.Nop())
	reportRepo := repository.NewReportRepository(db)
	schedules := NewScheduleService(scheduleRepo, zerolog.Nop())
	reports := NewReportService(reportRepo)
	return NewDigestService(reports), schedules
}

func TestUpcomingDigestMarksDueSoonTasks(t *testing.T) {
	digests, schedules := newTestDigestService(t)
	ctx := context.Background()

	now := time.Date(2024, time.May, 10, 9, 0, 0, 0, time.UTC)

	_, err := schedules.CreateSchedule(ctx, ScheduleInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Activities: []ActivityInput{
			{
				Name: "Thesis", Category: model.CategorySchool, Priority: model.PriorityHigh, Status: model.StatusPending,
				Tasks: []TaskInput{
					{Title: "Submit draft", Date: now.AddDate(0, 0, 1), Time: "10:00"},
					{Title: "Final review", Date: now.AddDate(0, 0, 14)},
					{Title: "Past defense", Date: now.AddDate(0, 0, -7)},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("CreateSchedule returned error: %v", err)
	}

	msg, err := digests.UpcomingDigest(ctx, now)
	if err != nil {
		t.Fatalf("UpcomingDigest returned error: %v", err)
	}

	if !strings.Contains(msg, "Upcoming deadlines") {
		t.Fatalf("digest is missing the header:\n%s", msg)
	}
	if !strings.Contains(msg, "⏳ <b>Submit draft</b>") {
		t.Fatalf("task due tomorrow should carry the hourglass icon:\n%s", msg)
	}
	if !strings.Contains(msg, "🟢 <b>Final review</b>") {
		t.Fatalf("task two weeks out should carry the green icon:\n%s", msg)
	}
	if strings.Contains(msg, "Past defense") {
		t.Fatalf("tasks before today must not appear in the digest:\n%s", msg)
	}
	if !strings.Contains(msg, "⏰ 10:00") {
		t.Fatalf("digest should show the task time when set:\n%s", msg)
	}
}

func TestUpcomingDigestEmptySchedule(t *testing.T) {
	digests, _ := newTestDigestService(t)

	msg, err := digests.UpcomingDigest(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("UpcomingDigest returned error: %v", err)
	}
	if !strings.Contains(msg, "nothing scheduled") {
		t.Fatalf("empty digest should say so:\n%s", msg)
	}
}

func TestUpcomingDigestEscapesHTML(t *testing.T) {
	digests, schedules := newTestDigestService(t)
	ctx := context.Background()

	now := time.Date(2024, time.May, 10, 9, 0, 0, 0, time.UTC)

	_, err := schedules.CreateSchedule(ctx, ScheduleInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Activities: []ActivityInput{
			{
				Name: "R&D", Category: model.CategoryOther, Priority: model.PriorityLow, Status: model.StatusPending,
				Tasks: []TaskInput{
					{Title: "Read <papers>", Date: now.AddDate(0, 0, 5)},
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("CreateSchedule returned error: %v", err)
	}

	msg, err := digests.UpcomingDigest(ctx, now)
	if err != nil {
		t.Fatalf("UpcomingDigest returned error: %v", err)
	}

	if !strings.Contains(msg, "Read &lt;papers&gt;") {
		t.Fatalf("task title was not HTML-escaped:\n%s", msg)
	}
	if !strings.Contains(msg, "R&amp;D") {
		t.Fatalf("activity name was not HTML-escaped:\n%s", msg)
	}
}

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"schedule-planner/internal/model"
)

func seedReportData(t *testing.T, repo *ScheduleRepository, now time.Time) {
	t.Helper()
	ctx := context.Background()

	yesterday := now.AddDate(0, 0, -1)
	tomorrow := now.AddDate(0, 0, 1)

	if _, err := repo.CreateSchedule(ctx, "Ada", "Lovelace", []NewActivity{
		{
			Name: "Thesis", Category: model.CategorySchool, Priority: model.PriorityHigh, Status: model.StatusPending,
			Tasks: []NewTask{
				{Title: "Draft outline", Date: yesterday},
				{Title: "Collect sources", Date: now, Time: strPtr("09:30")},
			},
		},
		{
			Name: "Conference", Category: model.CategoryEvent, Priority: model.PriorityLow, Status: model.StatusDone,
			Tasks: []NewTask{{Title: "Book travel", Date: tomorrow}},
		},
	}); err != nil {
		t.Fatalf("seed schedule: %v", err)
	}
}

func TestDashboardCountsAreTaskDriven(t *testing.T) {
	repo, db := newTestScheduleRepo(t)
	now := date(2024, time.May, 2)
	seedReportData(t, repo, now)

	// Simulate a parent that survived a failed cleanup: it must stay
	// invisible because the counters run over tasks, not users.
	if err := db.Create(&model.User{FirstName: "Ghost", LastName: "Row"}).Error; err != nil {
		t.Fatalf("insert orphan user: %v", err)
	}

	stats, err := NewReportRepository(db).DashboardStats(context.Background(), now)
	if err != nil {
		t.Fatalf("DashboardStats returned error: %v", err)
	}

	if stats.ActiveUsers != 1 {
		t.Fatalf("expected 1 active user despite the orphan row, got %d", stats.ActiveUsers)
	}
	if stats.ActiveActivities != 2 {
		t.Fatalf("expected 2 active activities, got %d", stats.ActiveActivities)
	}
	if stats.TotalTasks != 3 {
		t.Fatalf("expected 3 tasks, got %d", stats.TotalTasks)
	}
	// Yesterday's task is not upcoming.
	if stats.UpcomingTasks != 2 {
		t.Fatalf("expected 2 upcoming tasks, got %d", stats.UpcomingTasks)
	}
}

func TestListSchedulesNewestFirstWithLimit(t *testing.T) {
	repo, db := newTestScheduleRepo(t)
	now := date(2024, time.May, 2)
	seedReportData(t, repo, now)

	rows, err := NewReportRepository(db).ListSchedules(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListSchedules returned error: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].TaskID < rows[1].TaskID {
		t.Fatalf("expected newest task first, got ids %d, %d", rows[0].TaskID, rows[1].TaskID)
	}
	if rows[0].Title != "Book travel" {
		t.Fatalf("expected the last inserted task first, got %q", rows[0].Title)
	}
	if rows[0].FirstName != "Ada" || rows[0].ActivityName != "Conference" {
		t.Fatalf("joined columns wrong: %+v", rows[0])
	}
}

func TestScheduleByTaskNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := NewReportRepository(db).ScheduleByTask(context.Background(), 5)
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestTasksByStatusCounts(t *testing.T) {
	repo, db := newTestScheduleRepo(t)
	now := date(2024, time.May, 2)
	seedReportData(t, repo, now)

	counts, err := NewReportRepository(db).TasksByStatus(context.Background())
	if err != nil {
		t.Fatalf("TasksByStatus returned error: %v", err)
	}

	got := make(map[string]int64)
	for _, c := range counts {
		got[c.Label] = c.Tasks
	}
	if got[model.StatusPending] != 2 {
		t.Fatalf("expected 2 pending tasks, got %d", got[model.StatusPending])
	}
	if got[model.StatusDone] != 1 {
		t.Fatalf("expected 1 done task, got %d", got[model.StatusDone])
	}
}

func TestTasksByPriorityOrdersHighFirst(t *testing.T) {
	repo, db := newTestScheduleRepo(t)
	now := date(2024, time.May, 2)
	seedReportData(t, repo, now)

	counts, err := NewReportRepository(db).TasksByPriority(context.Background())
	if err != nil {
		t.Fatalf("TasksByPriority returned error: %v", err)
	}

	if len(counts) != 2 {
		t.Fatalf("expected 2 priority buckets, got %d", len(counts))
	}
	if counts[0].Label != model.PriorityHigh {
		t.Fatalf("expected High first, got %q", counts[0].Label)
	}
	if counts[0].Tasks != 2 || counts[1].Tasks != 1 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}

func TestUserSummariesCountDistinct(t *testing.T) {
	repo, db := newTestScheduleRepo(t)
	now := date(2024, time.May, 2)
	seedReportData(t, repo, now)

	summaries, err := NewReportRepository(db).UserSummaries(context.Background())
	if err != nil {
		t.Fatalf("UserSummaries returned error: %v", err)
	}

	if len(summaries) != 1 {
		t.Fatalf("expected 1 user, got %d", len(summaries))
	}
	// 2 activities joined with 3 tasks would inflate to 6 without
	// DISTINCT counting.
	if summaries[0].Activities != 2 {
		t.Fatalf("expected 2 activities, got %d", summaries[0].Activities)
	}
	if summaries[0].Tasks != 3 {
		t.Fatalf("expected 3 tasks, got %d", summaries[0].Tasks)
	}
}

func TestUpcomingDeadlinesFiltersAndOrders(t *testing.T) {
	repo, db := newTestScheduleRepo(t)
	now := date(2024, time.May, 2)
	seedReportData(t, repo, now)

	rows, err := NewReportRepository(db).UpcomingDeadlines(context.Background(), now, 0)
	if err != nil {
		t.Fatalf("UpcomingDeadlines returned error: %v", err)
	}

	if len(rows) != 2 {
		t.Fatalf("expected 2 upcoming rows, got %d", len(rows))
	}
	if rows[0].Title != "Collect sources" || rows[1].Title != "Book travel" {
		t.Fatalf("unexpected deadline order: %q, %q", rows[0].Title, rows[1].Title)
	}
}

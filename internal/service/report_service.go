package service

import (
	"context"
	"time"

	"schedule-planner/internal/repository"
)

// ReportService exposes the read queries the presentation layer renders.
type ReportService struct {
	repo *repository.ReportRepository
}

func NewReportService(repo *repository.ReportRepository) *ReportService {
	return &ReportService{repo: repo}
}

func (s *ReportService) Dashboard(ctx context.Context, now time.Time) (repository.DashboardStats, error) {
	return s.repo.DashboardStats(ctx, now)
}

func (s *ReportService) ListSchedules(ctx context.Context, limit int) ([]repository.ScheduleRow, error) {
	return s.repo.ListSchedules(ctx, limit)
}

func (s *ReportService) ScheduleByTask(ctx context.Context, taskID uint) (repository.ScheduleRow, error) {
	return s.repo.ScheduleByTask(ctx, taskID)
}

func (s *ReportService) TasksByStatus(ctx context.Context) ([]repository.GroupCount, error) {
	return s.repo.TasksByStatus(ctx)
}

func (s *ReportService) TasksByPriority(ctx context.Context) ([]repository.GroupCount, error) {
	return s.repo.TasksByPriority(ctx)
}

func (s *ReportService) TasksByCategory(ctx context.Context) ([]repository.GroupCount, error) {
	return s.repo.TasksByCategory(ctx)
}

func (s *ReportService) UserSummaries(ctx context.Context) ([]repository.UserSummary, error) {
	return s.repo.UserSummaries(ctx)
}

func (s *ReportService) UpcomingDeadlines(ctx context.Context, now time.Time, limit int) ([]repository.ScheduleRow, error) {
	return s.repo.UpcomingDeadlines(ctx, now, limit)
}

package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"schedule-planner/internal/repository"
)

const digestLimit = 15

// DigestService renders the periodic "upcoming deadlines" summary as
// Telegram HTML.
type DigestService struct {
	reports *ReportService
}

func NewDigestService(reports *ReportService) *DigestService {
	return &DigestService{reports: reports}
}

// UpcomingDigest builds the digest message for now. Tasks due within
// 48 hours get the hourglass icon.
func (s *DigestService) UpcomingDigest(ctx context.Context, now time.Time) (string, error) {
	rows, err := s.reports.UpcomingDeadlines(ctx, now, digestLimit)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("📅 <b>Upcoming deadlines</b>\n")
	b.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("January 2, 2006")))

	if len(rows) == 0 {
		b.WriteString("— nothing scheduled from today on\n")
		return strings.TrimSpace(b.String()), nil
	}

	for _, row := range rows {
		b.WriteString(formatDigestRow(row, now))
	}

	return strings.TrimSpace(b.String()), nil
}

func formatDigestRow(row repository.ScheduleRow, now time.Time) string {
	var sb strings.Builder

	icon := "🟢"
	if row.Date.Sub(now) <= 48*time.Hour {
		icon = "⏳"
	}

	sb.WriteString(fmt.Sprintf("%s <b>%s</b>", icon, html.EscapeString(strings.TrimSpace(row.Title))))
	sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(row.ActivityName)))

	sb.WriteString(fmt.Sprintf("\n   📆 %s", row.Date.Format("2006-01-02")))
	if row.Time != nil && *row.Time != "" {
		sb.WriteString(fmt.Sprintf(" ⏰ %s", *row.Time))
	}
	sb.WriteString(fmt.Sprintf(" · %s · %s", row.Priority, row.Status))
	sb.WriteString(fmt.Sprintf("\n   👤 %s %s", html.EscapeString(row.FirstName), html.EscapeString(row.LastName)))

	sb.WriteByte('\n')
	return sb.String()
}

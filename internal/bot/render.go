package bot

import (
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"schedule-planner/internal/model"
	"schedule-planner/internal/repository"
)

func renderScheduleList(rows []repository.ScheduleRow) (string, tgbotapi.InlineKeyboardMarkup) {
	var sb strings.Builder
	sb.WriteString("📋 <b>Latest tasks</b>\n")
	sb.WriteString("Use the buttons to mark an activity done or delete a task.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("%s <b>#%d %s</b>\n", priorityIcon(row.Priority), row.TaskID, escape(row.Title)))
		sb.WriteString(fmt.Sprintf("   🎯 %s · 📅 %s", escape(row.ActivityName), row.Date.Format("2006-01-02")))
		if row.Time != nil && *row.Time != "" {
			sb.WriteString(fmt.Sprintf(" ⏰ %s", *row.Time))
		}
		sb.WriteString(fmt.Sprintf(" · 👤 %s %s · %s\n", escape(row.FirstName), escape(row.LastName), row.Status))

		buttons = append(buttons, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✅ #%d · %s", row.TaskID, shortTitle(row.Title, 20)),
				fmt.Sprintf("%s%d:%s", cbStatusPrefix, row.TaskID, model.StatusDone),
			),
			tgbotapi.NewInlineKeyboardButtonData("✏️ Edit", fmt.Sprintf("%s%d", cbEditPrefix, row.TaskID)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", fmt.Sprintf("%s%d", cbDeletePrefix, row.TaskID)),
		))
	}

	return strings.TrimSpace(sb.String()), tgbotapi.NewInlineKeyboardMarkup(buttons...)
}

func renderDashboard(stats repository.DashboardStats, now time.Time) string {
	var sb strings.Builder
	sb.WriteString("📊 <b>Dashboard</b>\n")
	sb.WriteString(fmt.Sprintf("🗓 %s\n\n", now.Format("January 2, 2006")))
	sb.WriteString(fmt.Sprintf("👥 Active users: <b>%d</b>\n", stats.ActiveUsers))
	sb.WriteString(fmt.Sprintf("🎯 Active activities: <b>%d</b>\n", stats.ActiveActivities))
	sb.WriteString(fmt.Sprintf("📋 Total tasks: <b>%d</b>\n", stats.TotalTasks))
	sb.WriteString(fmt.Sprintf("⏰ Upcoming: <b>%d</b>", stats.UpcomingTasks))
	return sb.String()
}

func renderGroupCounts(title string, counts []repository.GroupCount) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 <b>%s</b>\n", title))

	if len(counts) == 0 {
		sb.WriteString("— no tasks yet")
		return sb.String()
	}

	for _, c := range counts {
		sb.WriteString(fmt.Sprintf("• %s — %d tasks\n", escape(c.Label), c.Tasks))
	}
	return strings.TrimSpace(sb.String())
}

func renderUserSummaries(summaries []repository.UserSummary) string {
	var sb strings.Builder
	sb.WriteString("📊 <b>User Activity Summary</b>\n")

	if len(summaries) == 0 {
		sb.WriteString("— no users yet")
		return sb.String()
	}

	for _, s := range summaries {
		sb.WriteString(fmt.Sprintf("• %s %s — 🎯 %d activities · 📋 %d tasks\n",
			escape(s.FirstName), escape(s.LastName), s.Activities, s.Tasks))
	}
	return strings.TrimSpace(sb.String())
}

func priorityIcon(priority string) string {
	switch priority {
	case model.PriorityHigh:
		return "🔴"
	case model.PriorityMedium:
		return "🟡"
	default:
		return "🟢"
	}
}

func choicesKeyboard(values []string) tgbotapi.ReplyKeyboardMarkup {
	row := make([]tgbotapi.KeyboardButton, 0, len(values))
	for _, v := range values {
		row = append(row, tgbotapi.NewKeyboardButton(v))
	}
	kb := tgbotapi.NewReplyKeyboard(row)
	kb.OneTimeKeyboard = true
	return kb
}

func keepKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnKeep)),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func keepOrClearKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnKeep),
			tgbotapi.NewKeyboardButton(btnClear),
		),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func choicesWithKeepKeyboard(values []string) tgbotapi.ReplyKeyboardMarkup {
	row := make([]tgbotapi.KeyboardButton, 0, len(values))
	for _, v := range values {
		row = append(row, tgbotapi.NewKeyboardButton(v))
	}
	kb := tgbotapi.NewReplyKeyboard(
		row,
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnKeep)),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnSkip)),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func yesNoKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnYes),
			tgbotapi.NewKeyboardButton(btnNo),
		),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func shortTitle(title string, limit int) string {
	title = strings.TrimSpace(title)
	runes := []rune(title)
	if len(runes) <= limit {
		return title
	}
	return strings.TrimSpace(string(runes[:limit])) + "…"
}

func escape(s string) string {
	return html.EscapeString(s)
}

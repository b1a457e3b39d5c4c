package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"schedule-planner/internal/repository"
	"schedule-planner/internal/service"
)

const (
	cbStatusPrefix        = "status:"
	cbEditPrefix          = "edit:"
	cbDeletePrefix        = "delete:"
	cbConfirmDeletePrefix = "confirmdelete:"
	cbCancelDeletePrefix  = "canceldelete:"
)

const listLimit = 10

// Bot is the interactive front end of the planner: it collects schedule
// submissions, lists them with quick actions, and renders the dashboard
// and reports. All data work is delegated to the services; the bot only
// turns results and errors into messages.
type Bot struct {
	api          *tgbotapi.BotAPI
	scheduleSvc  *service.ScheduleService
	reportSvc    *service.ReportService
	digestSvc    *service.DigestService
	digestChatID int64
	log          zerolog.Logger

	conversations map[int64]*conversationState
	mu            sync.Mutex
}

func New(token string, scheduleSvc *service.ScheduleService, reportSvc *service.ReportService, digestSvc *service.DigestService, digestChatID int64, log zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Info().Str("account", api.Self.UserName).Msg("bot authorized")

	return &Bot{
		api:           api,
		scheduleSvc:   scheduleSvc,
		reportSvc:     reportSvc,
		digestSvc:     digestSvc,
		digestChatID:  digestChatID,
		log:           log,
		conversations: make(map[int64]*conversationState),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info().Msg("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.Error().Err(err).Msg("handle callback")
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.Error().Err(err).Msg("handle message")
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if msg.IsCommand() {
		b.log.Info().Int64("from", msg.From.ID).Str("command", msg.Command()).Msg("command")
		return b.handleCommand(ctx, msg)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I didn't catch that. Use /new to create a schedule or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(msg)
	case "help":
		return b.handleHelp(msg)
	case "new":
		return b.startScheduleConversation(msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		return b.sendWithReplyMarkup(msg.Chat.ID, "↩️ Dialog cancelled.", tgbotapi.NewRemoveKeyboard(true))
	case "schedules":
		return b.handleSchedules(ctx, msg)
	case "dashboard":
		return b.handleDashboard(ctx, msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "status":
		return b.handleStatus(ctx, msg)
	case "edit":
		return b.handleEditCommand(ctx, msg)
	case "delete":
		return b.handleDeleteCommand(ctx, msg)
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(msg *tgbotapi.Message) error {
	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}

	text := fmt.Sprintf(
		"👋 Hi %s!\n<b>I keep schedules: activities with dated tasks, per person.</b>\n\nCommands:\n"+
			"• /new — create a schedule step by step\n"+
			"• /schedules — browse tasks with quick actions\n"+
			"• /dashboard — overall counters\n"+
			"• /report — grouped reports\n"+
			"• /status &lt;id&gt; &lt;status&gt; — change an activity's status\n"+
			"• /edit &lt;id&gt; — edit a task field by field\n"+
			"• /delete &lt;id&gt; — delete a task (with cleanup)\n"+
			"• /cancel — abort the current dialog",
		escape(name),
	)

	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Commands</b>\n" +
		"• /new — create a schedule: your name, then activities, then tasks\n" +
		"• /schedules — the latest tasks with Done/Delete buttons\n" +
		"• /dashboard — active users and activities, total and upcoming tasks\n" +
		"• /report status|priority|category|users|upcoming\n" +
		"• /status &lt;id&gt; &lt;Pending|In Progress|Done&gt; — note: status is shared by every task of the activity\n" +
		"• /edit &lt;id&gt; — walk through the task's name, activity and task fields, keeping or replacing each\n" +
		"• /delete &lt;id&gt; — removes the task; a user or activity left without tasks is removed too\n" +
		"• /cancel — abort the current dialog"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleSchedules(ctx context.Context, msg *tgbotapi.Message) error {
	rows, err := b.reportSvc.ListSchedules(ctx, listLimit)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load schedules: %s", escape(err.Error())))
	}

	if len(rows) == 0 {
		return b.sendText(msg.Chat.ID, "📭 No schedules yet. Create the first one with /new.")
	}

	text, keyboard := renderScheduleList(rows)
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ParseMode = tgbotapi.ModeHTML
	out.ReplyMarkup = keyboard
	_, err = b.api.Send(out)
	return err
}

func (b *Bot) handleDashboard(ctx context.Context, msg *tgbotapi.Message) error {
	stats, err := b.reportSvc.Dashboard(ctx, time.Now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load the dashboard: %s", escape(err.Error())))
	}

	return b.sendText(msg.Chat.ID, renderDashboard(stats, time.Now()))
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	kind := strings.ToLower(strings.TrimSpace(msg.CommandArguments()))

	switch kind {
	case "", "status":
		counts, err := b.reportSvc.TasksByStatus(ctx)
		return b.sendReport(msg.Chat.ID, "Tasks by Status", counts, err)
	case "priority":
		counts, err := b.reportSvc.TasksByPriority(ctx)
		return b.sendReport(msg.Chat.ID, "Tasks by Priority", counts, err)
	case "category":
		counts, err := b.reportSvc.TasksByCategory(ctx)
		return b.sendReport(msg.Chat.ID, "Tasks by Category", counts, err)
	case "users":
		summaries, err := b.reportSvc.UserSummaries(ctx)
		if err != nil {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not build the report: %s", escape(err.Error())))
		}
		return b.sendText(msg.Chat.ID, renderUserSummaries(summaries))
	case "upcoming":
		text, err := b.digestSvc.UpcomingDigest(ctx, time.Now())
		if err != nil {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not build the report: %s", escape(err.Error())))
		}
		return b.sendText(msg.Chat.ID, text)
	default:
		return b.sendText(msg.Chat.ID, "Report types: status, priority, category, users, upcoming.")
	}
}

func (b *Bot) sendReport(chatID int64, title string, counts []repository.GroupCount, err error) error {
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not build the report: %s", escape(err.Error())))
	}
	return b.sendText(chatID, renderGroupCounts(title, counts))
}

func (b *Bot) handleStatus(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	fields := strings.SplitN(args, " ", 2)
	if len(fields) < 2 {
		return b.sendText(msg.Chat.ID, "Usage: /status 12 Done")
	}

	taskID, err := parseID(fields[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, "The task id must be a number.")
	}

	return b.changeStatus(ctx, msg.Chat.ID, taskID, strings.TrimSpace(fields[1]))
}

func (b *Bot) changeStatus(ctx context.Context, chatID int64, taskID uint, status string) error {
	err := b.scheduleSvc.SetStatus(ctx, taskID, status)
	switch {
	case err == nil:
		return b.sendText(chatID, fmt.Sprintf("✅ Status changed to <b>%s</b> for task #%d's activity (all its tasks now show it).", escape(status), taskID))
	case errors.Is(err, repository.ErrTaskNotFound):
		return b.sendText(chatID, "Task not found.")
	default:
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			return b.sendText(chatID, fmt.Sprintf("⚠️ %s", escape(verr.Error())))
		}
		return b.sendText(chatID, fmt.Sprintf("Failed to change status: %s", escape(err.Error())))
	}
}

func (b *Bot) handleDeleteCommand(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return b.sendText(msg.Chat.ID, "Usage: /delete 12")
	}

	taskID, err := parseID(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, "The task id must be a number.")
	}

	return b.askDeleteConfirmation(ctx, msg.Chat.ID, taskID)
}

func (b *Bot) askDeleteConfirmation(ctx context.Context, chatID int64, taskID uint) error {
	row, err := b.reportSvc.ScheduleByTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return b.sendText(chatID, "Task not found.")
		}
		return err
	}

	text := fmt.Sprintf(
		"Delete task <b>%s</b> (#%d)?\n🎯 %s · 👤 %s %s\n\n⚠️ This cannot be undone. If it is the last task of its activity or user, those are removed too.",
		escape(row.Title), row.TaskID, escape(row.ActivityName), escape(row.FirstName), escape(row.LastName),
	)

	out := tgbotapi.NewMessage(chatID, text)
	out.ParseMode = tgbotapi.ModeHTML
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", fmt.Sprintf("%s%d", cbConfirmDeletePrefix, taskID)),
			tgbotapi.NewInlineKeyboardButtonData("↩️ Cancel", fmt.Sprintf("%s%d", cbCancelDeletePrefix, taskID)),
		),
	)
	_, err = b.api.Send(out)
	return err
}

func (b *Bot) deleteTask(ctx context.Context, chatID int64, taskID uint) error {
	res, err := b.scheduleSvc.DeleteTask(ctx, taskID)
	switch {
	case err == nil:
		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("✅ Task #%d deleted.", taskID))
		if res.ActivityDeleted {
			sb.WriteString("\n🎯 Its activity had no tasks left and was removed.")
		}
		if res.UserDeleted {
			sb.WriteString("\n👤 Its user had no tasks left and was removed.")
		}
		return b.sendText(chatID, sb.String())
	case errors.Is(err, repository.ErrTaskNotFound):
		return b.sendText(chatID, "Task not found — it may have been deleted already.")
	default:
		return b.sendText(chatID, fmt.Sprintf("Failed to delete the task: %s", escape(err.Error())))
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		b.log.Warn().Err(err).Msg("callback ack")
	}

	data := cb.Data
	chatID := cb.Message.Chat.ID

	switch {
	case strings.HasPrefix(data, cbStatusPrefix):
		taskID, status, err := parseStatusCallback(data)
		if err != nil {
			return nil
		}
		return b.changeStatus(ctx, chatID, taskID, status)
	case strings.HasPrefix(data, cbEditPrefix):
		taskID, err := parseIDSuffix(data, cbEditPrefix)
		if err != nil {
			return nil
		}
		return b.startEditConversation(ctx, chatID, cb.From.ID, taskID)
	case strings.HasPrefix(data, cbDeletePrefix):
		taskID, err := parseIDSuffix(data, cbDeletePrefix)
		if err != nil {
			return nil
		}
		return b.askDeleteConfirmation(ctx, chatID, taskID)
	case strings.HasPrefix(data, cbConfirmDeletePrefix):
		taskID, err := parseIDSuffix(data, cbConfirmDeletePrefix)
		if err != nil {
			return nil
		}
		return b.deleteTask(ctx, chatID, taskID)
	case strings.HasPrefix(data, cbCancelDeletePrefix):
		return b.sendText(chatID, "Deletion cancelled.")
	default:
		return nil
	}
}

// SendDigest pushes the upcoming-deadlines digest to the configured
// chat. Used by the cron job.
func (b *Bot) SendDigest(ctx context.Context) error {
	if b.digestChatID == 0 {
		return nil
	}

	text, err := b.digestSvc.UpcomingDigest(ctx, time.Now())
	if err != nil {
		return err
	}

	return b.sendText(b.digestChatID, text)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func parseIDSuffix(data, prefix string) (uint, error) {
	return parseID(strings.TrimPrefix(data, prefix))
}

func parseStatusCallback(data string) (uint, string, error) {
	parts := strings.SplitN(strings.TrimPrefix(data, cbStatusPrefix), ":", 2)
	if len(parts) != 2 {
		return 0, "", fmt.Errorf("malformed status callback %q", data)
	}
	id, err := parseID(parts[0])
	if err != nil {
		return 0, "", err
	}
	return id, parts[1], nil
}

package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"schedule-planner/internal/model"
	"schedule-planner/internal/service"
)

// The /new dialog walks the same form the desktop app shows: user
// name first, then one or more activities, each with one or more
// dated tasks.
type conversationStage int

const (
	stageFirstName conversationStage = iota
	stageLastName
	stageActivityName
	stageActivityCategory
	stageActivityPriority
	stageActivityStatus
	stageTaskTitle
	stageTaskDescription
	stageTaskDate
	stageTaskTime
	stageTaskAnother
	stageActivityAnother

	stageEditFirstName
	stageEditLastName
	stageEditActivityName
	stageEditCategory
	stageEditPriority
	stageEditStatus
	stageEditTitle
	stageEditDescription
	stageEditDate
	stageEditTime
	stageEditDone
)

const (
	btnSkip = "⏭ Skip"
	btnYes  = "Yes"
	btnNo   = "No"
)

type conversationState struct {
	stage    conversationStage
	input    service.ScheduleInput
	activity service.ActivityInput
	task     service.TaskInput

	// set while the /edit dialog is walking a task's fields
	editTaskID uint
	edit       service.UpdateInput
}

func (b *Bot) startScheduleConversation(msg *tgbotapi.Message) error {
	b.setConversation(msg.From.ID, &conversationState{stage: stageFirstName})
	return b.sendWithReplyMarkup(msg.Chat.ID,
		"🆕 Creating a schedule.\n<b>Step 1:</b> what is the first name?",
		tgbotapi.NewRemoveKeyboard(true))
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	if state.editTaskID != 0 {
		return b.handleEditStep(ctx, msg, state)
	}

	text := strings.TrimSpace(msg.Text)

	switch state.stage {
	case stageFirstName:
		if text == "" {
			return b.sendText(msg.Chat.ID, "The first name can't be empty.")
		}
		state.input.FirstName = text
		state.stage = stageLastName
		return b.sendText(msg.Chat.ID, "And the last name?")

	case stageLastName:
		if text == "" {
			return b.sendText(msg.Chat.ID, "The last name can't be empty.")
		}
		state.input.LastName = text
		state.stage = stageActivityName
		return b.sendText(msg.Chat.ID, fmt.Sprintf("🎯 <b>Activity #%d</b>\nWhat should it be called?", len(state.input.Activities)+1))

	case stageActivityName:
		if text == "" {
			return b.sendText(msg.Chat.ID, "The activity name can't be empty.")
		}
		state.activity = service.ActivityInput{Name: text}
		state.stage = stageActivityCategory
		return b.sendWithReplyMarkup(msg.Chat.ID, "Pick a category.", choicesKeyboard(model.Categories()))

	case stageActivityCategory:
		if !model.ValidCategory(text) {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Use one of the buttons.", choicesKeyboard(model.Categories()))
		}
		state.activity.Category = text
		state.stage = stageActivityPriority
		return b.sendWithReplyMarkup(msg.Chat.ID, "Pick a priority.", choicesKeyboard(model.Priorities()))

	case stageActivityPriority:
		if !model.ValidPriority(text) {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Use one of the buttons.", choicesKeyboard(model.Priorities()))
		}
		state.activity.Priority = text
		state.stage = stageActivityStatus
		return b.sendWithReplyMarkup(msg.Chat.ID, "Pick a status. It will be shared by every task of this activity.", choicesKeyboard(model.Statuses()))

	case stageActivityStatus:
		if !model.ValidStatus(text) {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Use one of the buttons.", choicesKeyboard(model.Statuses()))
		}
		state.activity.Status = text
		state.stage = stageTaskTitle
		return b.sendWithReplyMarkup(msg.Chat.ID,
			fmt.Sprintf("📝 <b>Task #%d</b>\nWhat is the task title?", len(state.activity.Tasks)+1),
			tgbotapi.NewRemoveKeyboard(true))

	case stageTaskTitle:
		if text == "" {
			return b.sendText(msg.Chat.ID, "The task title can't be empty.")
		}
		state.task = service.TaskInput{Title: text}
		state.stage = stageTaskDescription
		return b.sendWithReplyMarkup(msg.Chat.ID, "Add a short description (or Skip).", skipKeyboard())

	case stageTaskDescription:
		if text != btnSkip {
			state.task.Description = text
		}
		state.stage = stageTaskDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "📆 Task date, like <code>2026-09-15</code>.", tgbotapi.NewRemoveKeyboard(true))

	case stageTaskDate:
		parsed, err := time.Parse("2006-01-02", text)
		if err != nil {
			return b.sendText(msg.Chat.ID, "I can't read that date. Use the <code>2026-09-15</code> format.")
		}
		state.task.Date = parsed
		state.stage = stageTaskTime
		return b.sendWithReplyMarkup(msg.Chat.ID, "⏰ Time of day, like <code>14:30</code> (or Skip).", skipKeyboard())

	case stageTaskTime:
		if text != btnSkip {
			if _, err := time.Parse("15:04", text); err != nil {
				return b.sendWithReplyMarkup(msg.Chat.ID, "I can't read that time. Use <code>14:30</code> or Skip.", skipKeyboard())
			}
			state.task.Time = text
		}
		state.activity.Tasks = append(state.activity.Tasks, state.task)
		state.stage = stageTaskAnother
		return b.sendWithReplyMarkup(msg.Chat.ID, "Add another task to this activity?", yesNoKeyboard())

	case stageTaskAnother:
		switch strings.ToLower(text) {
		case "yes", "y":
			state.stage = stageTaskTitle
			return b.sendWithReplyMarkup(msg.Chat.ID,
				fmt.Sprintf("📝 <b>Task #%d</b>\nWhat is the task title?", len(state.activity.Tasks)+1),
				tgbotapi.NewRemoveKeyboard(true))
		case "no", "n":
			state.input.Activities = append(state.input.Activities, state.activity)
			state.stage = stageActivityAnother
			return b.sendWithReplyMarkup(msg.Chat.ID, "Add another activity?", yesNoKeyboard())
		default:
			return b.sendWithReplyMarkup(msg.Chat.ID, "Please answer Yes or No.", yesNoKeyboard())
		}

	case stageActivityAnother:
		switch strings.ToLower(text) {
		case "yes", "y":
			state.stage = stageActivityName
			return b.sendWithReplyMarkup(msg.Chat.ID,
				fmt.Sprintf("🎯 <b>Activity #%d</b>\nWhat should it be called?", len(state.input.Activities)+1),
				tgbotapi.NewRemoveKeyboard(true))
		case "no", "n":
			err := b.finishSchedule(ctx, msg.Chat.ID, state.input)
			b.clearConversation(msg.From.ID)
			return err
		default:
			return b.sendWithReplyMarkup(msg.Chat.ID, "Please answer Yes or No.", yesNoKeyboard())
		}

	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "The dialog got lost. Start again with /new.")
	}
}

func (b *Bot) finishSchedule(ctx context.Context, chatID int64, input service.ScheduleInput) error {
	userID, err := b.scheduleSvc.CreateSchedule(ctx, input)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			return b.sendWithReplyMarkup(chatID, fmt.Sprintf("⚠️ %s", escape(verr.Error())), tgbotapi.NewRemoveKeyboard(true))
		}
		return b.sendWithReplyMarkup(chatID, fmt.Sprintf("Failed to save the schedule: %s", escape(err.Error())), tgbotapi.NewRemoveKeyboard(true))
	}

	tasks := 0
	for _, act := range input.Activities {
		tasks += len(act.Tasks)
	}

	text := fmt.Sprintf(
		"✅ <b>Schedule created</b> for %s %s (user #%d)\n🎯 %d activities · 📝 %d tasks\n\nBrowse them with /schedules.",
		escape(input.FirstName), escape(input.LastName), userID, len(input.Activities), tasks,
	)
	return b.sendWithReplyMarkup(chatID, text, tgbotapi.NewRemoveKeyboard(true))
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

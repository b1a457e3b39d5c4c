package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"schedule-planner/internal/model"
	"schedule-planner/internal/repository"
	"schedule-planner/internal/service"
)

// The /edit dialog mirrors the desktop update form: every editable
// field of the task, its activity and its owner is walked once,
// prefilled with the stored value, and the whole edit is saved in one
// call at the end.

const (
	btnKeep  = "↩️ Keep"
	btnClear = "🧹 Clear"
)

func (b *Bot) handleEditCommand(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		return b.sendText(msg.Chat.ID, "Usage: /edit 12")
	}

	taskID, err := parseID(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, "The task id must be a number.")
	}

	return b.startEditConversation(ctx, msg.Chat.ID, msg.From.ID, taskID)
}

func (b *Bot) startEditConversation(ctx context.Context, chatID, userID int64, taskID uint) error {
	row, err := b.reportSvc.ScheduleByTask(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return b.sendText(chatID, "Task not found.")
		}
		return err
	}

	state := &conversationState{
		stage:      stageEditFirstName,
		editTaskID: taskID,
		edit:       editInputFromRow(row),
	}
	b.setConversation(userID, state)

	intro := fmt.Sprintf(
		"✏️ Editing task <b>%s</b> (#%d).\nI will walk through each field; pick Keep to leave one unchanged. /cancel aborts.",
		escape(row.Title), row.TaskID,
	)
	if err := b.sendText(chatID, intro); err != nil {
		return err
	}
	return b.promptEdit(chatID, state)
}

func (b *Bot) handleEditStep(ctx context.Context, msg *tgbotapi.Message, state *conversationState) error {
	if err := applyEditInput(state, strings.TrimSpace(msg.Text)); err != nil {
		return b.sendText(msg.Chat.ID, escape(err.Error()))
	}

	if state.stage == stageEditDone {
		err := b.finishEdit(ctx, msg.Chat.ID, state)
		b.clearConversation(msg.From.ID)
		return err
	}

	return b.promptEdit(msg.Chat.ID, state)
}

// applyEditInput feeds one answer into the edit dialog: btnKeep leaves
// the field as loaded, anything else replaces it after validation. On a
// validation error the stage does not advance so the question can be
// answered again.
func applyEditInput(state *conversationState, text string) error {
	keep := text == btnKeep

	switch state.stage {
	case stageEditFirstName:
		if !keep {
			if text == "" {
				return fmt.Errorf("The first name can't be empty.")
			}
			state.edit.FirstName = text
		}
		state.stage = stageEditLastName

	case stageEditLastName:
		if !keep {
			if text == "" {
				return fmt.Errorf("The last name can't be empty.")
			}
			state.edit.LastName = text
		}
		state.stage = stageEditActivityName

	case stageEditActivityName:
		if !keep {
			if text == "" {
				return fmt.Errorf("The activity name can't be empty.")
			}
			state.edit.ActivityName = text
		}
		state.stage = stageEditCategory

	case stageEditCategory:
		if !keep {
			if !model.ValidCategory(text) {
				return fmt.Errorf("Use one of the category buttons.")
			}
			state.edit.Category = text
		}
		state.stage = stageEditPriority

	case stageEditPriority:
		if !keep {
			if !model.ValidPriority(text) {
				return fmt.Errorf("Use one of the priority buttons.")
			}
			state.edit.Priority = text
		}
		state.stage = stageEditStatus

	case stageEditStatus:
		if !keep {
			if !model.ValidStatus(text) {
				return fmt.Errorf("Use one of the status buttons.")
			}
			state.edit.Status = text
		}
		state.stage = stageEditTitle

	case stageEditTitle:
		if !keep {
			if text == "" {
				return fmt.Errorf("The task title can't be empty.")
			}
			state.edit.Title = text
		}
		state.stage = stageEditDescription

	case stageEditDescription:
		switch {
		case keep:
		case text == btnClear:
			state.edit.Description = ""
		default:
			state.edit.Description = text
		}
		state.stage = stageEditDate

	case stageEditDate:
		if !keep {
			parsed, err := time.Parse("2006-01-02", text)
			if err != nil {
				return fmt.Errorf("I can't read that date. Use the 2026-09-15 format.")
			}
			state.edit.Date = parsed
		}
		state.stage = stageEditTime

	case stageEditTime:
		switch {
		case keep:
		case text == btnClear:
			state.edit.Time = ""
		default:
			if _, err := time.Parse("15:04", text); err != nil {
				return fmt.Errorf("I can't read that time. Use 14:30, Keep or Clear.")
			}
			state.edit.Time = text
		}
		state.stage = stageEditDone
	}

	return nil
}

func (b *Bot) promptEdit(chatID int64, state *conversationState) error {
	var (
		field   string
		current string
		markup  interface{} = keepKeyboard()
	)

	switch state.stage {
	case stageEditFirstName:
		field, current = "First name", state.edit.FirstName
	case stageEditLastName:
		field, current = "Last name", state.edit.LastName
	case stageEditActivityName:
		field, current = "Activity name", state.edit.ActivityName
	case stageEditCategory:
		field, current = "Category", state.edit.Category
		markup = choicesWithKeepKeyboard(model.Categories())
	case stageEditPriority:
		field, current = "Priority", state.edit.Priority
		markup = choicesWithKeepKeyboard(model.Priorities())
	case stageEditStatus:
		field, current = "Status", state.edit.Status
		markup = choicesWithKeepKeyboard(model.Statuses())
	case stageEditTitle:
		field, current = "Title", state.edit.Title
	case stageEditDescription:
		field, current = "Description", state.edit.Description
		markup = keepOrClearKeyboard()
	case stageEditDate:
		field, current = "Date", state.edit.Date.Format("2006-01-02")
	case stageEditTime:
		field, current = "Time", state.edit.Time
		markup = keepOrClearKeyboard()
	default:
		return nil
	}

	if current == "" {
		current = "not set"
	}
	text := fmt.Sprintf("%s is <b>%s</b>. Send a new value or keep it.", field, escape(current))
	return b.sendWithReplyMarkup(chatID, text, markup)
}

func (b *Bot) finishEdit(ctx context.Context, chatID int64, state *conversationState) error {
	err := b.scheduleSvc.UpdateTask(ctx, state.editTaskID, state.edit)
	switch {
	case err == nil:
		return b.sendWithReplyMarkup(chatID,
			fmt.Sprintf("✅ Task #%d updated. Browse it with /schedules.", state.editTaskID),
			tgbotapi.NewRemoveKeyboard(true))
	case errors.Is(err, repository.ErrTaskNotFound):
		return b.sendWithReplyMarkup(chatID,
			"Task not found — it may have been deleted meanwhile.",
			tgbotapi.NewRemoveKeyboard(true))
	default:
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			return b.sendWithReplyMarkup(chatID, fmt.Sprintf("⚠️ %s", escape(verr.Error())), tgbotapi.NewRemoveKeyboard(true))
		}
		return b.sendWithReplyMarkup(chatID, fmt.Sprintf("Failed to update the task: %s", escape(err.Error())), tgbotapi.NewRemoveKeyboard(true))
	}
}

// editInputFromRow prefills the edit dialog with a task's stored
// values so Keep answers leave them untouched.
func editInputFromRow(row repository.ScheduleRow) service.UpdateInput {
	input := service.UpdateInput{
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		ActivityName: row.ActivityName,
		Category:     row.Category,
		Priority:     row.Priority,
		Status:       row.Status,
		Title:        row.Title,
		Description:  row.Description,
		Date:         row.Date,
	}
	if row.Time != nil {
		input.Time = *row.Time
	}
	return input
}

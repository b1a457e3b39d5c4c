package bot

import (
	"testing"
	"time"

	"schedule-planner/internal/model"
	"schedule-planner/internal/repository"
	"schedule-planner/internal/service"
)

func editRow() repository.ScheduleRow {
	clock := "09:30"
	return repository.ScheduleRow{
		TaskID:       7,
		Title:        "Draft outline",
		Description:  "first pass",
		Date:         time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
		Time:         &clock,
		ActivityName: "Thesis",
		Category:     model.CategorySchool,
		Priority:     model.PriorityHigh,
		Status:       model.StatusPending,
		FirstName:    "Ada",
		LastName:     "Lovelace",
	}
}

func TestEditInputFromRowPrefillsEveryField(t *testing.T) {
	input := editInputFromRow(editRow())

	want := service.UpdateInput{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		ActivityName: "Thesis",
		Category:     model.CategorySchool,
		Priority:     model.PriorityHigh,
		Status:       model.StatusPending,
		Title:        "Draft outline",
		Description:  "first pass",
		Date:         time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC),
		Time:         "09:30",
	}
	if input != want {
		t.Fatalf("prefilled input mismatch:\ngot  %+v\nwant %+v", input, want)
	}
}

func TestEditInputFromRowHandlesMissingTime(t *testing.T) {
	row := editRow()
	row.Time = nil

	if input := editInputFromRow(row); input.Time != "" {
		t.Fatalf("expected an empty time for a task without one, got %q", input.Time)
	}
}

func TestApplyEditInputWalksAllFields(t *testing.T) {
	state := &conversationState{
		stage:      stageEditFirstName,
		editTaskID: 7,
		edit:       editInputFromRow(editRow()),
	}

	answers := []string{
		"Grace",               // first name replaced
		btnKeep,               // last name kept
		"Dissertation",        // activity name replaced
		model.CategoryOther,   // category replaced
		btnKeep,               // priority kept
		model.StatusDone,      // status replaced
		"Final outline",       // title replaced
		btnClear,              // description cleared
		"2024-06-15",          // date replaced
		btnClear,              // time cleared
	}
	for _, answer := range answers {
		if err := applyEditInput(state, answer); err != nil {
			t.Fatalf("applyEditInput(%q) returned error: %v", answer, err)
		}
	}

	if state.stage != stageEditDone {
		t.Fatalf("expected the dialog to finish, stage is %d", state.stage)
	}

	want := service.UpdateInput{
		FirstName:    "Grace",
		LastName:     "Lovelace",
		ActivityName: "Dissertation",
		Category:     model.CategoryOther,
		Priority:     model.PriorityHigh,
		Status:       model.StatusDone,
		Title:        "Final outline",
		Description:  "",
		Date:         time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC),
		Time:         "",
	}
	if state.edit != want {
		t.Fatalf("collected input mismatch:\ngot  %+v\nwant %+v", state.edit, want)
	}
}

func TestApplyEditInputRejectsBadAnswers(t *testing.T) {
	cases := []struct {
		name   string
		stage  conversationStage
		answer string
	}{
		{"empty first name", stageEditFirstName, ""},
		{"unknown category", stageEditCategory, "Chores"},
		{"unknown status", stageEditStatus, "Finished"},
		{"empty title", stageEditTitle, ""},
		{"malformed date", stageEditDate, "June 15"},
		{"malformed time", stageEditTime, "2pm"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := &conversationState{
				stage:      tc.stage,
				editTaskID: 7,
				edit:       editInputFromRow(editRow()),
			}
			before := state.edit

			if err := applyEditInput(state, tc.answer); err == nil {
				t.Fatalf("expected %q to be rejected", tc.answer)
			}
			if state.stage != tc.stage {
				t.Fatal("a rejected answer must not advance the dialog")
			}
			if state.edit != before {
				t.Fatal("a rejected answer must not change the collected input")
			}
		})
	}
}

func TestRenderScheduleListOffersRowActions(t *testing.T) {
	_, keyboard := renderScheduleList([]repository.ScheduleRow{editRow()})

	if len(keyboard.InlineKeyboard) != 1 {
		t.Fatalf("expected one button row, got %d", len(keyboard.InlineKeyboard))
	}

	want := map[string]bool{
		"status:7:Done": false,
		"edit:7":        false,
		"delete:7":      false,
	}
	for _, button := range keyboard.InlineKeyboard[0] {
		if button.CallbackData == nil {
			t.Fatal("every row button must carry callback data")
		}
		if _, ok := want[*button.CallbackData]; ok {
			want[*button.CallbackData] = true
		}
	}
	for data, seen := range want {
		if !seen {
			t.Fatalf("missing row action %q", data)
		}
	}
}

package model

import (
	"strings"
	"time"
)

// Todo is a single todo item owned by a user.
// CompletedAt is non-nil if and only if Completed is true.
type Todo struct {
	ID          string `json:"_id"`
	Text        string `json:"text"`
	Completed   bool   `json:"completed"`
	CompletedAt *int64 `json:"completedAt"`
	CreatorID   string `json:"_creator"`
}

// NewTodo builds an unsaved todo, trimming and validating its text.
func NewTodo(creatorID, text string) (*Todo, error) {
	text, err := normalizeText(text)
	if err != nil {
		return nil, err
	}
	return &Todo{
		Text:      text,
		CreatorID: creatorID,
	}, nil
}

// TodoPatch is the client-supplied partial update.
type TodoPatch struct {
	Text      *string
	Completed *bool
}

// TodoUpdate is the update actually applied to a stored todo.
// Completed and CompletedAt are always written; Text only when set.
type TodoUpdate struct {
	Text        *string
	Completed   bool
	CompletedAt *int64
}

// Apply derives the stored update from a patch. completedAt is never taken from
// the client: it is set to now when completed is true and cleared otherwise.
func (p TodoPatch) Apply(now time.Time) (TodoUpdate, error) {
	var upd TodoUpdate

	if p.Text != nil {
		text, err := normalizeText(*p.Text)
		if err != nil {
			return TodoUpdate{}, err
		}
		upd.Text = &text
	}

	if p.Completed != nil && *p.Completed {
		ms := now.UnixMilli()
		upd.Completed = true
		upd.CompletedAt = &ms
	}

	return upd, nil
}

// ApplyTo writes the update onto a todo in place.
func (u TodoUpdate) ApplyTo(t *Todo) {
	if u.Text != nil {
		t.Text = *u.Text
	}
	t.Completed = u.Completed
	t.CompletedAt = u.CompletedAt
}

func normalizeText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", NewValidationError("text", "is required")
	}
	return text, nil
}

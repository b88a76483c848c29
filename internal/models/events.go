package models

import "time"

// Ключи маршрутизации учебных событий.
const (
	EventProgressSaved     = "progress.saved"
	EventProgressCompleted = "progress.completed"
	EventCodeExecuted      = "code.executed"
)

// ProgressEvent публикуется после сохранения прогресса.
type ProgressEvent struct {
	UserID     string    `json:"userId"`
	Language   string    `json:"language"`
	TutorialID int       `json:"tutorialId"`
	Completed  bool      `json:"completed"`
	OccurredAt time.Time `json:"occurredAt"`
}

// ExecutionEvent публикуется после запуска кода.
type ExecutionEvent struct {
	UserID     *string   `json:"userId,omitempty"`
	Language   string    `json:"language"`
	TutorialID *int      `json:"tutorialId,omitempty"`
	Failed     bool      `json:"failed"`
	OccurredAt time.Time `json:"occurredAt"`
}

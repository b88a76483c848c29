package models

import "time"

// ExecutionLogEntry запись журнала об одном запуске кода. После записи не изменяется.
type ExecutionLogEntry struct {
	ID            string    `db:"id"`
	UserID        *string   `db:"user_id"`
	SessionID     string    `db:"session_id"`
	Language      string    `db:"language"`
	Code          string    `db:"code"`
	Output        *string   `db:"output"`
	Error         *string   `db:"error"`
	ExecutionTime time.Time `db:"execution_time"`
	TutorialID    *int      `db:"tutorial_id"`
}

// ExecuteRequest запрос на выполнение кода.
type ExecuteRequest struct {
	Language   string `json:"language" validate:"required,max=32"`
	Code       string `json:"code" validate:"required"`
	TutorialID *int   `json:"tutorialId,omitempty"`
}

// ExecutionResult нормализованный результат внешнего сервиса исполнения.
type ExecutionResult struct {
	Output         *string `json:"output"`
	Error          *string `json:"error"`
	ElapsedSeconds float64 `json:"elapsedSeconds"`
}

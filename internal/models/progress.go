package models

import "time"

// ProgressRecord состояние пользователя в одном уроке.
//
// На тройку (UserID, Language, TutorialID) приходится не больше одной записи.
type ProgressRecord struct {
	ID             string     `db:"id" json:"id"`
	UserID         string     `db:"user_id" json:"userId"`
	Language       string     `db:"language" json:"language"`
	TutorialID     int        `db:"tutorial_id" json:"tutorialId"`
	Completed      bool       `db:"completed" json:"completed"`
	CodeSnapshot   *string    `db:"code_snapshot" json:"codeSnapshot,omitempty"`
	LastAccessed   time.Time  `db:"last_accessed" json:"lastAccessed"`
	CompletionTime *time.Time `db:"completion_time" json:"completionTime,omitempty"`
}

// SaveProgressRequest данные для сохранения прогресса из JSON-запроса.
type SaveProgressRequest struct {
	Language     string  `json:"language" validate:"required,max=32"`
	TutorialID   int     `json:"tutorialId" validate:"required,gt=0"`
	Completed    bool    `json:"completed"`
	CodeSnapshot *string `json:"codeSnapshot,omitempty"`
}

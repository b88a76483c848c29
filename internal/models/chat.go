package models

import "time"

// ChatExchange один обмен репликами с тьютором. После записи не изменяется.
type ChatExchange struct {
	ID        string    `db:"id" json:"id"`
	SessionID string    `db:"session_id" json:"sessionId"`
	UserID    *string   `db:"user_id" json:"userId,omitempty"`
	Message   string    `db:"message" json:"message"`
	Response  string    `db:"response" json:"response"`
	Context   *string   `db:"context" json:"context,omitempty"`
	Timestamp time.Time `db:"sent_at" json:"timestamp"`
}

// ChatRequest вопрос к тьютору вместе с контекстом урока.
type ChatRequest struct {
	SessionID    string  `json:"sessionId" validate:"required,max=128"`
	Message      string  `json:"message" validate:"required"`
	Context      *string `json:"context,omitempty"`
	CurrentCode  *string `json:"currentCode,omitempty"`
	ErrorMessage *string `json:"errorMessage,omitempty"`
	TutorialID   *int    `json:"tutorialId,omitempty"`
}

// ChatReply ответ тьютора.
type ChatReply struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
}

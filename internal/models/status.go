package models

import "time"

// StatusCheck отметка доступности от клиента.
type StatusCheck struct {
	ID         string    `db:"id" json:"id"`
	ClientName string    `db:"client_name" json:"clientName"`
	Timestamp  time.Time `db:"checked_at" json:"timestamp"`
}

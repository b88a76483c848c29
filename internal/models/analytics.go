package models

import "time"

// UserStats сводка по пользователям для панели администратора.
//
// ActiveToday и ActiveThisWeek считают записи прогресса, а не уникальных пользователей.
type UserStats struct {
	TotalUsers     int `json:"totalUsers"`
	ActiveToday    int `json:"activeToday"`
	ActiveThisWeek int `json:"activeThisWeek"`
	NewThisWeek    int `json:"newThisWeek"`
}

// LanguageStats статистика по языку программирования.
type LanguageStats struct {
	Language          string  `json:"language"`
	TotalUsers        int     `json:"totalUsers"`
	TotalCompletions  int     `json:"totalCompletions"`
	AvgCompletionRate float64 `json:"avgCompletionRate"`
}

// TutorialStats статистика по уроку.
type TutorialStats struct {
	Language       string  `json:"language"`
	TutorialID     int     `json:"tutorialId"`
	Title          string  `json:"title"`
	CompletionRate float64 `json:"completionRate"`
}

// RecentActivity последнее действие пользователя в уроке.
type RecentActivity struct {
	Username   string    `json:"username"`
	Language   string    `json:"language"`
	TutorialID int       `json:"tutorialId"`
	Completed  bool      `json:"completed"`
	Timestamp  time.Time `json:"timestamp"`
}

// Dashboard агрегированные данные панели администратора.
type Dashboard struct {
	UserStats      UserStats        `json:"userStats"`
	LanguageStats  []LanguageStats  `json:"languageStats"`
	TutorialStats  []TutorialStats  `json:"tutorialStats"`
	RecentActivity []RecentActivity `json:"recentActivity"`
}

// UserSummary сводка активности одного пользователя, без хэша пароля.
type UserSummary struct {
	ID              string     `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastLogin       *time.Time `json:"lastLogin,omitempty"`
	TotalProgress   int        `json:"totalProgress"`
	Completions     int        `json:"completions"`
	LastActivity    *time.Time `json:"lastActivity,omitempty"`
	CurrentLanguage *string    `json:"currentLanguage,omitempty"`
}

// ErrorSummary частота одинаковой ошибки выполнения по языку.
type ErrorSummary struct {
	Language string `db:"language" json:"language"`
	Error    string `db:"error" json:"error"`
	Count    int    `db:"count" json:"count"`
}

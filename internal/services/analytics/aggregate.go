package services

import (
	"sort"

	"github.com/cl-scripter/learning-api/internal/models"
)

// UnknownUsername подставляется в ленту активности, если владелец записи не найден.
const UnknownUsername = "Unknown"

type tally struct {
	users       map[string]struct{}
	attempts    int
	completions int
}

// GroupByLanguage считает статистику по языкам. Попытка равна одной записи прогресса.
func GroupByLanguage(records []models.ProgressRecord) []models.LanguageStats {
	groups := map[string]*tally{}
	for _, r := range records {
		g, ok := groups[r.Language]
		if !ok {
			g = &tally{users: map[string]struct{}{}}
			groups[r.Language] = g
		}
		g.users[r.UserID] = struct{}{}
		g.attempts++
		if r.Completed {
			g.completions++
		}
	}

	stats := make([]models.LanguageStats, 0, len(groups))
	for lang, g := range groups {
		stats = append(stats, models.LanguageStats{
			Language:          lang,
			TotalUsers:        len(g.users),
			TotalCompletions:  g.completions,
			AvgCompletionRate: float64(g.completions) / float64(g.attempts),
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Language < stats[j].Language })
	return stats
}

type tutorialKey struct {
	language   string
	tutorialID int
}

// GroupByTutorial считает долю завершений по каждому уроку.
func GroupByTutorial(records []models.ProgressRecord) []models.TutorialStats {
	groups := map[tutorialKey]*tally{}
	for _, r := range records {
		k := tutorialKey{r.Language, r.TutorialID}
		g, ok := groups[k]
		if !ok {
			g = &tally{}
			groups[k] = g
		}
		g.attempts++
		if r.Completed {
			g.completions++
		}
	}

	stats := make([]models.TutorialStats, 0, len(groups))
	for k, g := range groups {
		stats = append(stats, models.TutorialStats{
			Language:       k.language,
			TutorialID:     k.tutorialID,
			Title:          TutorialTitle(k.language, k.tutorialID),
			CompletionRate: float64(g.completions) / float64(g.attempts),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Language != stats[j].Language {
			return stats[i].Language < stats[j].Language
		}
		return stats[i].TutorialID < stats[j].TutorialID
	})
	return stats
}

// RecentActivity превращает записи в ленту активности, сохраняя их порядок.
func RecentActivity(records []models.ProgressRecord, usernames map[string]string) []models.RecentActivity {
	out := make([]models.RecentActivity, 0, len(records))
	for _, r := range records {
		name, ok := usernames[r.UserID]
		if !ok {
			name = UnknownUsername
		}
		out = append(out, models.RecentActivity{
			Username:   name,
			Language:   r.Language,
			TutorialID: r.TutorialID,
			Completed:  r.Completed,
			Timestamp:  r.LastAccessed,
		})
	}
	return out
}

// SummarizeUsers собирает сводку по каждому пользователю в порядке users.
func SummarizeUsers(users []models.User, records []models.ProgressRecord) []models.UserSummary {
	byUser := map[string][]models.ProgressRecord{}
	for _, r := range records {
		byUser[r.UserID] = append(byUser[r.UserID], r)
	}

	out := make([]models.UserSummary, 0, len(users))
	for _, u := range users {
		s := models.UserSummary{
			ID:        u.ID,
			Username:  u.Username,
			Email:     u.Email,
			CreatedAt: u.CreatedAt,
			LastLogin: u.LastLogin,
		}
		var latest *models.ProgressRecord
		for i := range byUser[u.ID] {
			r := &byUser[u.ID][i]
			s.TotalProgress++
			if r.Completed {
				s.Completions++
			}
			if latest == nil || r.LastAccessed.After(latest.LastAccessed) {
				latest = r
			}
		}
		if latest != nil {
			at := latest.LastAccessed
			lang := latest.Language
			s.LastActivity = &at
			s.CurrentLanguage = &lang
		}
		out = append(out, s)
	}
	return out
}

// Package services содержит шлюз к языковой модели: сборку подсказки тьютора,
// вызов модели и сохранение каждого обмена репликами.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cl-scripter/learning-api/internal/lib/sl"
	"github.com/cl-scripter/learning-api/internal/llm"
	"github.com/cl-scripter/learning-api/internal/metrics"
	"github.com/cl-scripter/learning-api/internal/models"
)

// Ошибки шлюза тьютора.
var (
	ErrNotConfigured = errors.New("tutor is not configured")
	ErrUpstream      = errors.New("tutor service unavailable")
)

// Ограничения истории диалога.
const (
	DefaultHistoryLimit = 10
	MaxHistoryLimit     = 100
	contextTurns        = 10
)

const systemPrompt = `You are a helpful coding tutor specializing in multiple programming languages for complete beginners.

Your role:
- Help students learn programming step by step
- Explain concepts in simple, beginner-friendly language
- Debug code issues and provide clear explanations
- Encourage learning and provide positive feedback
- Give specific, actionable guidance

Guidelines:
- Keep responses concise but informative (2-3 sentences max for simple questions)
- Use encouraging, patient tone
- Provide code examples when helpful
- Focus on understanding, not just answers
- If a student is stuck, offer hints before full solutions`

// Model генерирует ответ языковой модели.
type Model interface {
	Configured() bool
	Generate(ctx context.Context, r llm.Request) (string, error)
}

// ChatRepository хранит обмены репликами.
type ChatRepository interface {
	SaveChatExchange(ctx context.Context, exchange models.ChatExchange) error
	ListChatHistory(ctx context.Context, sessionID string, userID *string, limit int) ([]models.ChatExchange, error)
}

// TutorService отвечает на вопросы учеников.
type TutorService struct {
	model     Model
	repo      ChatRepository
	maxTokens int
	log       *slog.Logger
	now       func() time.Time
}

// NewTutorService создает новый экземпляр TutorService.
func NewTutorService(model Model, repo ChatRepository, maxTokens int, log *slog.Logger) *TutorService {
	return &TutorService{
		model:     model,
		repo:      repo,
		maxTokens: maxTokens,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// BuildSystemPrompt дополняет подсказку тьютора контекстом урока.
func BuildSystemPrompt(req models.ChatRequest) string {
	var sb strings.Builder
	sb.WriteString(systemPrompt)
	if req.Context != nil && *req.Context != "" {
		sb.WriteString("\n\nCurrent context: " + *req.Context)
	}
	if req.CurrentCode != nil && *req.CurrentCode != "" {
		sb.WriteString("\n\nStudent's current code:\n```\n" + *req.CurrentCode + "\n```")
	}
	if req.ErrorMessage != nil && *req.ErrorMessage != "" {
		sb.WriteString("\n\nCurrent error: " + *req.ErrorMessage)
	}
	if req.TutorialID != nil && *req.TutorialID != 0 {
		sb.WriteString("\n\nCurrent tutorial ID: " + strconv.Itoa(*req.TutorialID))
	}
	return sb.String()
}

// Converse отправляет вопрос модели вместе с предыдущими репликами сессии
// и сохраняет обмен. userID равен nil для анонимных запросов.
func (s *TutorService) Converse(ctx context.Context, userID *string, req models.ChatRequest) (*models.ChatReply, error) {
	const op = "services.tutor.Converse"

	if !s.model.Configured() {
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	history, err := s.repo.ListChatHistory(ctx, req.SessionID, userID, contextTurns)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	text, err := s.model.Generate(ctx, llm.Request{
		System:    BuildSystemPrompt(req),
		History:   turns(history),
		Message:   req.Message,
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		outcome := metrics.OutcomeError
		if isTimeout(err) {
			outcome = metrics.OutcomeTimeout
		}
		metrics.TutorRequests.WithLabelValues(outcome).Inc()
		s.log.Warn("tutor model request failed", slog.String("session_id", req.SessionID), sl.Err(err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrUpstream, err)
	}
	metrics.TutorRequests.WithLabelValues(metrics.OutcomeOK).Inc()

	exchange := models.ChatExchange{
		ID:        uuid.NewString(),
		SessionID: req.SessionID,
		UserID:    userID,
		Message:   req.Message,
		Response:  text,
		Context:   req.Context,
		Timestamp: s.now(),
	}
	if err := s.repo.SaveChatExchange(ctx, exchange); err != nil {
		s.log.Error("failed to save tutor exchange", slog.String("session_id", req.SessionID), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Debug("tutor exchange saved", slog.String("session_id", req.SessionID), slog.Int("history", len(history)))

	return &models.ChatReply{Response: text, SessionID: req.SessionID}, nil
}

// History возвращает последние limit обменов сессии, новые первыми.
func (s *TutorService) History(ctx context.Context, sessionID string, userID *string, limit int) ([]models.ChatExchange, error) {
	const op = "services.tutor.History"
	switch {
	case limit <= 0:
		limit = DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		limit = MaxHistoryLimit
	}

	history, err := s.repo.ListChatHistory(ctx, sessionID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return history, nil
}

// turns разворачивает историю (новые первыми) в реплики по порядку времени.
func turns(history []models.ChatExchange) []llm.Message {
	ordered := slices.Clone(history)
	slices.Reverse(ordered)

	out := make([]llm.Message, 0, 2*len(ordered))
	for _, h := range ordered {
		out = append(out,
			llm.Message{Role: llm.RoleUser, Text: h.Message},
			llm.Message{Role: llm.RoleModel, Text: h.Response},
		)
	}
	return out
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

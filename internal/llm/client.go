// Package llm клиент языковой модели по контракту Gemini generateContent.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Роли участников диалога.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ErrEmptyResponse модель не вернула текста.
var ErrEmptyResponse = errors.New("model returned no text")

// StatusError ответ модели с кодом, отличным от 200.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("model api status %d", e.Code)
	}
	return fmt.Sprintf("model api status %d: %s", e.Code, e.Message)
}

// Message одна реплика диалога.
type Message struct {
	Role string
	Text string
}

// Request запрос к модели.
type Request struct {
	System    string
	History   []Message
	Message   string
	MaxTokens int
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	MaxOutputTokens int `json:"maxOutputTokens,omitempty"`
}

type generateRequest struct {
	SystemInstruction *content         `json:"systemInstruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Client HTTP-клиент модели.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient создаёт клиент. Таймаут ограничивает весь запрос вместе с чтением ответа.
func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured сообщает, задан ли ключ API.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Generate отправляет диалог модели и возвращает текст ответа.
func (c *Client) Generate(ctx context.Context, r Request) (string, error) {
	const op = "llm.Generate"

	payload := generateRequest{
		GenerationConfig: generationConfig{MaxOutputTokens: r.MaxTokens},
	}
	if r.System != "" {
		payload.SystemInstruction = &content{Parts: []part{{Text: r.System}}}
	}
	for _, m := range r.History {
		payload.Contents = append(payload.Contents, content{Role: m.Role, Parts: []part{{Text: m.Text}}})
	}
	payload.Contents = append(payload.Contents, content{Role: RoleUser, Parts: []part{{Text: r.Message}}})

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(c.model), url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, redact(err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if resp.StatusCode != http.StatusOK {
		statusErr := &StatusError{Code: resp.StatusCode}
		var e errorResponse
		if json.Unmarshal(raw, &e) == nil {
			statusErr.Message = e.Error.Message
		}
		return "", fmt.Errorf("%s: %w", op, statusErr)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	var sb strings.Builder
	if len(out.Candidates) > 0 {
		for _, p := range out.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}
	return sb.String(), nil
}

// redact убирает URL с ключом API из ошибки транспорта.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%s request: %w", urlErr.Op, urlErr.Err)
	}
	return err
}

// Package compiler клиент внешнего сервиса исполнения кода (контракт JDoodle).
//
// Любой исход запуска, включая таймаут и недоступность сервиса, нормализуется
// в Result: ошибка запуска считается ожидаемым результатом, а не сбоем сервера.
package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/cl-scripter/learning-api/internal/metrics"
	"github.com/cl-scripter/learning-api/internal/models"
)

// Сообщения об ошибках, возвращаемые клиенту.
const (
	MsgUnavailable = "Compilation service unavailable"
	MsgTimedOut    = "Code execution timed out"
)

var languages = map[string]string{
	"java":       "java",
	"cpp":        "cpp",
	"c":          "c",
	"python":     "python3",
	"javascript": "nodejs",
	"ruby":       "ruby",
	"go":         "go",
	"rust":       "rust",
}

// RemoteLanguage возвращает имя языка во внешнем сервисе.
func RemoteLanguage(language string) (string, bool) {
	l, ok := languages[language]
	return l, ok
}

// Result нормализованный результат запуска вместе с исходом для метрик.
type Result struct {
	models.ExecutionResult
	Outcome string
}

type executeRequest struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	Script       string `json:"script"`
	Language     string `json:"language"`
	VersionIndex string `json:"versionIndex"`
}

type executeResponse struct {
	Output     string `json:"output"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

// Client HTTP-клиент сервиса исполнения.
type Client struct {
	clientID     string
	clientSecret string
	apiURL       string
	httpClient   *http.Client
	now          func() time.Time
}

// NewClient создаёт клиент с ограничением времени запроса timeout.
func NewClient(apiURL, clientID, clientSecret string, timeout time.Duration) *Client {
	return &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		apiURL:       apiURL,
		httpClient:   &http.Client{Timeout: timeout},
		now:          time.Now,
	}
}

// Execute отправляет код на исполнение. Неподдерживаемый язык отклоняется без сетевого вызова.
func (c *Client) Execute(ctx context.Context, language, code string) Result {
	remote, ok := RemoteLanguage(language)
	if !ok {
		return failed(fmt.Sprintf("Language %s not supported", language), 0, metrics.OutcomeUnsupported)
	}

	start := c.now()
	resp, err := c.send(ctx, executeRequest{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		Script:       code,
		Language:     remote,
		VersionIndex: "0",
	})
	if err != nil {
		if isTimeout(err) {
			return failed(MsgTimedOut, 0, metrics.OutcomeTimeout)
		}
		return failed("Execution error: "+err.Error(), 0, metrics.OutcomeError)
	}
	defer resp.Body.Close()
	elapsed := c.now().Sub(start).Seconds()

	if resp.StatusCode != http.StatusOK {
		return failed(MsgUnavailable, elapsed, metrics.OutcomeUnavailable)
	}

	var body executeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if isTimeout(err) {
			return failed(MsgTimedOut, 0, metrics.OutcomeTimeout)
		}
		return failed("Execution error: "+err.Error(), 0, metrics.OutcomeError)
	}
	if body.Error != "" {
		return failed(body.Error, elapsed, metrics.OutcomeError)
	}

	output := body.Output
	return Result{
		ExecutionResult: models.ExecutionResult{Output: &output, ElapsedSeconds: elapsed},
		Outcome:         metrics.OutcomeOK,
	}
}

func (c *Client) send(ctx context.Context, payload executeRequest) (*http.Response, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.httpClient.Do(req)
}

func failed(msg string, elapsed float64, outcome string) Result {
	return Result{
		ExecutionResult: models.ExecutionResult{Error: &msg, ElapsedSeconds: elapsed},
		Outcome:         outcome,
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Package leetcode содержит клиенты внешних источников данных:
// REST-апстрима с таблицами результатов контестов и GraphQL API
// платформы с официальными результатами и списком контестов.
package leetcode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/deekshith06/lc-rating-system/models"
)

var (
	// ErrContestNotFound — контест неизвестен апстриму.
	ErrContestNotFound = errors.New("contest not found")
	// ErrUpstreamUnavailable — апстрим недоступен (таймаут, сетевая
	// ошибка, 5xx после ретраев).
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrBlocked — апстрим вернул не-JSON ответ (обычно заслон Cloudflare).
	ErrBlocked = errors.New("request blocked by upstream")
	// ErrInvalidContestName — имя контеста не проходит валидацию платформы.
	ErrInvalidContestName = errors.New("invalid contest name")
)

// Заголовки браузера: GraphQL платформы отдаёт HTML-заглушку
// на запросы без привычного User-Agent.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

const defaultMaxRetries = 3

// Config — настройки клиента.
type Config struct {
	// StandingsBaseURL — базовый URL REST-источника standings
	// (lccn-совместимый API).
	StandingsBaseURL string
	// GraphQLURL — точка входа GraphQL платформы.
	GraphQLURL string
	// Timeout применяется к каждому HTTP-запросу.
	Timeout time.Duration
}

// Client — HTTP-клиент обоих апстримов. Безопасен для конкурентного
// использования.
type Client struct {
	cfg        Config
	httpClient *http.Client
	retryDelay time.Duration
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		retryDelay: time.Second,
	}
}

// ValidateContestName проверяет формат полного имени контеста.
func ValidateContestName(name string) bool {
	_, err := models.ParseContestName(name)
	return err == nil
}

// getJSON выполняет GET с ограниченными ретраями на 5xx и сетевых
// ошибках и декодирует JSON-ответ в out.
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	return c.doJSON(ctx, http.MethodGet, url, nil, out)
}

// postJSON выполняет POST с JSON-телом.
func (c *Client) postJSON(ctx context.Context, url string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}
	return c.doJSON(ctx, http.MethodPost, url, payload, out)
}

func (c *Client) doJSON(ctx context.Context, method, url string, body []byte, out interface{}) error {
	var lastErr error

	for attempt := 0; attempt < defaultMaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, ctx.Err())
			case <-time.After(time.Duration(attempt) * c.retryDelay):
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", browserUserAgent)
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		err = decodeResponse(resp, out)
		if errors.Is(err, errRetryable) {
			lastErr = err
			continue
		}
		return err
	}

	return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, lastErr)
}

var errRetryable = errors.New("retryable upstream error")

func decodeResponse(resp *http.Response, out interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return fmt.Errorf("%w: status %d", errRetryable, resp.StatusCode)
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrContestNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: unexpected status %d", ErrUpstreamUnavailable, resp.StatusCode)
	}

	// HTML вместо JSON значит, что запрос перехвачен заслоном.
	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return fmt.Errorf("%w: content type %q", ErrBlocked, contentType)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}

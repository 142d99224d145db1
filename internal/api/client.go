// internal/api/client.go
package api

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

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrRejected marks a request the game server understood but refused (success:false).
var ErrRejected = errors.New("rejected by game server")

// Error is returned for server rejections and non-2xx responses.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("game server returned %d", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// Client talks to the remote UNO rules server.
type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger
}

// NewClient builds a client for the API rooted at baseURL, e.g. http://localhost:5165/api.
func NewClient(baseURL string, timeout time.Duration, logger logrus.FieldLogger) *Client {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     logger,
	}
}

// StartGame deals a new game.
func (c *Client) StartGame(ctx context.Context, req StartGameRequest) (*StartGameResponse, error) {
	var res StartGameResponse
	if err := c.do(ctx, "/Game/start", req, &res); err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}
	return &res, nil
}

// PlayCard plays one card. A logical refusal is returned as an *Error wrapping ErrRejected.
func (c *Client) PlayCard(ctx context.Context, gameID string, req PlayCardRequest) (*ActionResponse, error) {
	var res ActionResponse
	if err := c.do(ctx, "/Game/"+url.PathEscape(gameID)+"/play", req, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return &res, &Error{Status: http.StatusOK, Message: res.Message, Err: ErrRejected}
	}
	return &res, nil
}

// DrawCard draws for the player. The server may auto-play the drawn card, in which case
// the returned events already contain the play.
func (c *Client) DrawCard(ctx context.Context, gameID string, req DrawCardRequest) (*ActionResponse, error) {
	var res ActionResponse
	if err := c.do(ctx, "/Game/"+url.PathEscape(gameID)+"/draw", req, &res); err != nil {
		return nil, err
	}
	if !res.Success {
		return &res, &Error{Status: http.StatusOK, Message: res.Message, Err: ErrRejected}
	}
	return &res, nil
}

func (c *Client) do(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	reqID := uuid.New()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID.String())

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	c.log.WithFields(logrus.Fields{
		"path":     path,
		"status":   resp.StatusCode,
		"request":  reqID,
		"duration": time.Since(start),
	}).Debug("Game server call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: errorMessage(data)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorMessage pulls a human readable message from an error body, if it has one.
func errorMessage(data []byte) string {
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		for _, m := range []string{body.Message, body.Error, body.Title} {
			if m != "" {
				return m
			}
		}
		return ""
	}
	return strings.TrimSpace(string(data))
}

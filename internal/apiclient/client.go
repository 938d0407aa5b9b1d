package apiclient

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

	"github.com/google/uuid"
	"github.com/locvowork/taskflow/internal/domain"
	"github.com/locvowork/taskflow/internal/logger"
)

const (
	pathLogin    = "login.php"
	pathRegister = "register.php"
	pathTodo     = "todo.php"

	headerRequestID = "X-Request-ID"
)

// Envelope is the shape shared by every API response.
type Envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
}

// AuthResult is the payload of a successful login or registration.
type AuthResult struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Client talks to the todo API. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL. A zero timeout leaves the transport default.
func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	body := map[string]string{"email": email, "password": password}
	var res AuthResult
	if err := c.call(ctx, "login", http.MethodPost, pathLogin, "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) Register(ctx context.Context, fullName, email, password string) (*AuthResult, error) {
	body := map[string]string{"fullName": fullName, "email": email, "password": password}
	var res AuthResult
	if err := c.call(ctx, "register", http.MethodPost, pathRegister, "", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) ListTasks(ctx context.Context, token string) ([]domain.Task, error) {
	data, err := c.do(ctx, "list tasks", http.MethodGet, pathTodo, token, nil)
	if err != nil {
		return nil, err
	}
	tasks := []domain.Task{}
	if isEmpty(data) {
		return tasks, nil
	}
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, &TransportError{Op: "list tasks", Err: fmt.Errorf("malformed response data: %w", err)}
	}
	return tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, token string, draft domain.Draft) (*domain.Task, error) {
	var task domain.Task
	if err := c.call(ctx, "create task", http.MethodPost, pathTodo, token, draft, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

type updateRequest struct {
	ID domain.FlexID `json:"id"`
	domain.Patch
}

func (c *Client) UpdateTask(ctx context.Context, token string, id domain.FlexID, patch domain.Patch) (*domain.Task, error) {
	var task domain.Task
	if err := c.call(ctx, "update task", http.MethodPut, pathTodo, token, updateRequest{ID: id, Patch: patch}, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, token string, id domain.FlexID) error {
	body := map[string]domain.FlexID{"id": id}
	_, err := c.do(ctx, "delete task", http.MethodDelete, pathTodo, token, body)
	return err
}

// call is do for operations whose success envelope must carry data.
func (c *Client) call(ctx context.Context, op, method, path, token string, in, out interface{}) error {
	data, err := c.do(ctx, op, method, path, token, in)
	if err != nil {
		return err
	}
	if isEmpty(data) {
		return &TransportError{Op: op, Err: errors.New("malformed response: missing data")}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("malformed response data: %w", err)}
	}
	return nil
}

func isEmpty(data json.RawMessage) bool {
	return len(data) == 0 || string(data) == "null"
}

// do sends one request, decodes the envelope and returns its data.
func (c *Client) do(ctx context.Context, op, method, path, token string, in interface{}) (json.RawMessage, error) {
	requestID := uuid.NewString()
	ctx = logger.WithRequestID(ctx, requestID)

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request: %w", op, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+path, body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	logger.DebugLog(ctx, fmt.Sprintf("%s %s (%s)", method, path, op))
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		logger.WarnLog(ctx, fmt.Sprintf("%s failed: %v", op, err))
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.WarnLog(ctx, fmt.Sprintf("%s: non-JSON response with status %d", op, resp.StatusCode))
		return nil, &TransportError{Op: op, Err: fmt.Errorf("malformed response (status %d): %w", resp.StatusCode, err)}
	}
	logger.DebugLog(ctx, fmt.Sprintf("%s answered status=%d success=%t in %s", op, resp.StatusCode, env.Success, time.Since(start)))

	if !env.Success {
		return nil, &LogicalError{StatusCode: resp.StatusCode, Message: env.Message}
	}
	return env.Data, nil
}

package fakeapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/locvowork/taskflow/internal/domain"
)

var errUserExists = errors.New("user already exists")

func (s *Server) createUser(fullName, email, password string) (*user, error) {
	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(email)
	if _, ok := s.users[key]; ok {
		return nil, errUserExists
	}
	s.nextUserID++
	u := &user{id: s.nextUserID, fullName: fullName, email: email, passwordHash: hash}
	s.users[key] = u
	return u, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authPayload struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

func (s *Server) LoginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return ResponseError(c, http.StatusBadRequest, "Email and password are required")
	}

	s.mu.Lock()
	u, ok := s.users[strings.ToLower(req.Email)]
	s.mu.Unlock()
	if !ok || !checkPasswordHash(req.Password, u.passwordHash) {
		return ResponseError(c, http.StatusUnauthorized, "Invalid email or password")
	}

	token, err := s.generateToken(u.id)
	if err != nil {
		return ResponseError(c, http.StatusInternalServerError, "Could not generate token")
	}
	return ResponseSuccess(c, http.StatusOK, "Login successful", authPayload{Token: token, User: u.profile()})
}

func (s *Server) RegisterHandler(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid request body")
	}
	if req.FullName == "" || req.Email == "" || req.Password == "" {
		return ResponseError(c, http.StatusBadRequest, "All fields are required")
	}

	u, err := s.createUser(req.FullName, req.Email, req.Password)
	if errors.Is(err, errUserExists) {
		return ResponseError(c, http.StatusConflict, "Email already registered")
	}
	if err != nil {
		return ResponseError(c, http.StatusInternalServerError, "Registration failed")
	}

	token, err := s.generateToken(u.id)
	if err != nil {
		return ResponseError(c, http.StatusInternalServerError, "Could not generate token")
	}
	return ResponseSuccess(c, http.StatusCreated, "Registration successful", authPayload{Token: token, User: u.profile()})
}

// ListHandler returns the caller's tasks, newest first.
func (s *Server) ListHandler(c echo.Context) error {
	uid := c.Get(userIDKey).(int64)

	s.mu.Lock()
	stored := s.tasks[uid]
	out := make([]domain.Task, 0, len(stored))
	for i := len(stored) - 1; i >= 0; i-- {
		out = append(out, stored[i])
	}
	s.mu.Unlock()

	return ResponseSuccess(c, http.StatusOK, "", out)
}

func (s *Server) CreateHandler(c echo.Context) error {
	uid := c.Get(userIDKey).(int64)
	var draft domain.Draft
	if err := c.Bind(&draft); err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid request body")
	}
	if strings.TrimSpace(draft.Title) == "" {
		return ResponseError(c, http.StatusBadRequest, "Title is required")
	}
	if draft.Priority == "" {
		draft.Priority = domain.PriorityMedium
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTaskID++
	task := domain.Task{
		ID:          domain.FlexID(s.nextTaskID),
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		DueDate:     draft.DueDate,
		Priority:    draft.Priority,
		CreatedAt:   domain.Timestamp{Time: s.now().UTC().Truncate(time.Second)},
	}
	s.tasks[uid] = append(s.tasks[uid], task)
	return ResponseSuccess(c, http.StatusCreated, "Todo created", task)
}

type updateRequest struct {
	ID          domain.FlexID    `json:"id"`
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	DueDate     *domain.Date     `json:"dueDate"`
	Priority    *domain.Priority `json:"priority"`
	Completed   *domain.FlexBool `json:"completed"`
}

func (s *Server) UpdateHandler(c echo.Context) error {
	uid := c.Get(userIDKey).(int64)
	var req updateRequest
	if err := c.Bind(&req); err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tasks[uid] {
		t := &s.tasks[uid][i]
		if t.ID != req.ID {
			continue
		}
		if req.Title != nil {
			t.Title = *req.Title
		}
		if req.Description != nil {
			t.Description = *req.Description
		}
		if req.DueDate != nil {
			t.DueDate = *req.DueDate
		}
		if req.Priority != nil {
			t.Priority = *req.Priority
		}
		if req.Completed != nil {
			t.Completed = *req.Completed
		}
		return ResponseSuccess(c, http.StatusOK, "Todo updated", *t)
	}
	return ResponseError(c, http.StatusNotFound, "Todo not found")
}

type deleteRequest struct {
	ID domain.FlexID `json:"id"`
}

func (s *Server) DeleteHandler(c echo.Context) error {
	uid := c.Get(userIDKey).(int64)
	var req deleteRequest
	if err := c.Bind(&req); err != nil {
		return ResponseError(c, http.StatusBadRequest, "Invalid request body")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tasks := s.tasks[uid]
	for i := range tasks {
		if tasks[i].ID == req.ID {
			s.tasks[uid] = append(tasks[:i], tasks[i+1:]...)
			return ResponseSuccess(c, http.StatusOK, "Todo deleted", nil)
		}
	}
	return ResponseError(c, http.StatusNotFound, "Todo not found")
}

// Package fakeapi is an in-process stand-in for the todo API, used by tests.
package fakeapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/locvowork/taskflow/internal/domain"
)

type user struct {
	id           int64
	fullName     string
	email        string
	passwordHash string
}

func (u *user) profile() domain.User {
	return domain.User{ID: domain.FlexID(u.id), FullName: u.fullName, Email: u.email}
}

type fault struct {
	message string
	broken  bool
	delay   time.Duration
}

// Server is a fake todo API backed by memory.
type Server struct {
	Echo *echo.Echo
	ts   *httptest.Server

	secret []byte
	now    func() time.Time

	mu         sync.Mutex
	users      map[string]*user
	tasks      map[int64][]domain.Task
	nextUserID int64
	nextTaskID int64
	hits       map[string]int
	log        []string
	faults     map[string][]fault
}

// New starts a fake API that is closed when t finishes.
func New(t testing.TB) *Server {
	s := &Server{
		Echo:   echo.New(),
		secret: []byte("fakeapi-secret"),
		now:    time.Now,
		users:  make(map[string]*user),
		tasks:  make(map[int64][]domain.Task),
		hits:   make(map[string]int),
		faults: make(map[string][]fault),
	}
	s.Echo.HideBanner = true
	s.RegisterMiddlewares()
	s.RegisterRoutes()

	s.ts = httptest.NewServer(s.Echo)
	t.Cleanup(s.ts.Close)
	return s
}

func (s *Server) RegisterMiddlewares() {
	s.Echo.Use(middleware.Recover())
	s.Echo.Use(s.record)
}

func (s *Server) RegisterRoutes() {
	s.Echo.POST("/login.php", s.LoginHandler)
	s.Echo.POST("/register.php", s.RegisterHandler)

	s.Echo.GET("/todo.php", s.ListHandler, s.requireBearer)
	s.Echo.POST("/todo.php", s.CreateHandler, s.requireBearer)
	s.Echo.PUT("/todo.php", s.UpdateHandler, s.requireBearer)
	s.Echo.DELETE("/todo.php", s.DeleteHandler, s.requireBearer)
}

// URL is the API base URL.
func (s *Server) URL() string { return s.ts.URL }

// Close stops the server; later requests fail at the transport level.
func (s *Server) Close() { s.ts.Close() }

// Hits counts requests received for method and path (e.g. "POST", "/todo.php").
func (s *Server) Hits(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+path]
}

// TotalHits counts every request received.
func (s *Server) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.hits {
		n += v
	}
	return n
}

// Log returns "METHOD path" for every handled request, in arrival order.
func (s *Server) Log() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.log...)
}

// FailNext makes the next request to method+path answer success=false with message.
func (s *Server) FailNext(method, path, message string) {
	s.addFault(method, path, fault{message: message})
}

// BreakNext makes the next request to method+path answer with a non-JSON body.
func (s *Server) BreakNext(method, path string) {
	s.addFault(method, path, fault{broken: true})
}

// DelayNext holds the next request to method+path for d before handling it.
func (s *Server) DelayNext(method, path string, d time.Duration) {
	s.addFault(method, path, fault{delay: d})
}

func (s *Server) addFault(method, path string, f fault) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	s.faults[key] = append(s.faults[key], f)
}

// SeedUser registers a user directly and returns a valid token for it.
func (s *Server) SeedUser(fullName, email, password string) (string, domain.User) {
	u, err := s.createUser(fullName, email, password)
	if err != nil {
		panic(err)
	}
	token, err := s.generateToken(u.id)
	if err != nil {
		panic(err)
	}
	return token, u.profile()
}

// SeedTask stores a task for the user with the given email.
func (s *Server) SeedTask(email string, task domain.Task) domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		panic(fmt.Sprintf("fakeapi: unknown user %s", email))
	}
	s.nextTaskID++
	task.ID = domain.FlexID(s.nextTaskID)
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if task.CreatedAt.IsZero() {
		task.CreatedAt = domain.Timestamp{Time: s.now().UTC().Truncate(time.Second)}
	}
	s.tasks[u.id] = append(s.tasks[u.id], task)
	return task
}

// Tasks returns the stored tasks of a user, oldest first.
func (s *Server) Tasks(email string) []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[strings.ToLower(email)]
	if !ok {
		return nil
	}
	return append([]domain.Task(nil), s.tasks[u.id]...)
}

func (s *Server) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		key := req.Method + " " + req.URL.Path

		s.mu.Lock()
		s.hits[key]++
		s.log = append(s.log, key)
		var f *fault
		if queue := s.faults[key]; len(queue) > 0 {
			f = &queue[0]
			s.faults[key] = queue[1:]
		}
		s.mu.Unlock()

		if f == nil {
			return next(c)
		}
		if f.delay > 0 {
			time.Sleep(f.delay)
			return next(c)
		}
		if f.broken {
			return c.HTML(http.StatusInternalServerError, "<br /><b>Fatal error</b>: Uncaught PDOException")
		}
		return ResponseError(c, http.StatusOK, f.message)
	}
}

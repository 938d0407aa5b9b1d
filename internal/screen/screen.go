// Package screen models which screen the client shows and how it moves
// between them.
package screen

import (
	"fmt"
	"sync"
)

type Screen int

const (
	Loader Screen = iota
	Onboarding
	Login
	Register
	Workspace
)

var screenNames = map[Screen]string{
	Loader:     "loader",
	Onboarding: "onboarding",
	Login:      "login",
	Register:   "register",
	Workspace:  "workspace",
}

func (s Screen) String() string {
	if name, ok := screenNames[s]; ok {
		return name
	}
	return fmt.Sprintf("screen(%d)", int(s))
}

type Event int

const (
	NoSession Event = iota
	Restored
	OnboardingDone
	ShowRegister
	BackToLogin
	Authenticated
	LoggedOut
)

var eventNames = map[Event]string{
	NoSession:      "no-session",
	Restored:       "restored",
	OnboardingDone: "onboarding-done",
	ShowRegister:   "show-register",
	BackToLogin:    "back-to-login",
	Authenticated:  "authenticated",
	LoggedOut:      "logged-out",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(e))
}

type edge struct {
	from  Screen
	event Event
}

var transitions = map[edge]Screen{
	{Loader, NoSession}:          Onboarding,
	{Loader, Restored}:           Workspace,
	{Onboarding, OnboardingDone}: Login,
	{Login, ShowRegister}:        Register,
	{Register, BackToLogin}:      Login,
	{Login, Authenticated}:       Workspace,
	{Register, Authenticated}:    Workspace,
	{Workspace, LoggedOut}:       Login,
}

// TransitionError is returned by Fire for an event the current screen does
// not handle.
type TransitionError struct {
	From  Screen
	Event Event
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("no transition from %s on %s", e.From, e.Event)
}

// Machine tracks the current screen. It starts on Loader.
type Machine struct {
	mu       sync.Mutex
	current  Screen
	onChange func(from, to Screen)
}

func NewMachine() *Machine {
	return &Machine{current: Loader}
}

// OnChange registers fn to run after every successful transition.
func (m *Machine) OnChange(fn func(from, to Screen)) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

func (m *Machine) Current() Screen {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Fire applies event and returns the new screen. The screen is unchanged on error.
func (m *Machine) Fire(event Event) (Screen, error) {
	m.mu.Lock()
	from := m.current
	to, ok := transitions[edge{from, event}]
	if !ok {
		m.mu.Unlock()
		return from, &TransitionError{From: from, Event: event}
	}
	m.current = to
	fn := m.onChange
	m.mu.Unlock()

	if fn != nil {
		fn(from, to)
	}
	return to, nil
}

// Can reports whether event is handled on the current screen.
func (m *Machine) Can(event Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := transitions[edge{m.current, event}]
	return ok
}

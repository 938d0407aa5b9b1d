package screen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachineFlows(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
		want   Screen
	}{
		{name: "restored session", events: []Event{Restored}, want: Workspace},
		{name: "first run", events: []Event{NoSession, OnboardingDone, Authenticated}, want: Workspace},
		{name: "register", events: []Event{NoSession, OnboardingDone, ShowRegister, Authenticated}, want: Workspace},
		{name: "back to login", events: []Event{NoSession, OnboardingDone, ShowRegister, BackToLogin}, want: Login},
		{name: "logout", events: []Event{Restored, LoggedOut}, want: Login},
		{name: "login again", events: []Event{Restored, LoggedOut, Authenticated}, want: Workspace},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine()
			for _, ev := range tt.events {
				_, err := m.Fire(ev)
				require.NoError(t, err, "event %s", ev)
			}
			assert.Equal(t, tt.want, m.Current())
		})
	}
}

func TestMachineRejectsUnknownTransition(t *testing.T) {
	m := NewMachine()

	got, err := m.Fire(LoggedOut)
	var te *TransitionError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, Loader, te.From)
	assert.Equal(t, LoggedOut, te.Event)
	assert.Equal(t, Loader, got)
	assert.Equal(t, Loader, m.Current())

	assert.False(t, m.Can(OnboardingDone))
	assert.True(t, m.Can(NoSession))
}

func TestMachineOnChange(t *testing.T) {
	m := NewMachine()
	var seen []string
	m.OnChange(func(from, to Screen) { seen = append(seen, from.String()+">"+to.String()) })

	_, _ = m.Fire(NoSession)
	_, _ = m.Fire(ShowRegister)
	_, _ = m.Fire(OnboardingDone)

	assert.Equal(t, []string{"loader>onboarding", "onboarding>login"}, seen)
}

func TestDeck(t *testing.T) {
	d := NewDeck()
	assert.Equal(t, 4, d.Len())
	assert.Equal(t, "Welcome to TaskFlow", d.Current().Title)
	assert.Equal(t, "Next →", d.NextLabel())

	d.Prev()
	assert.Equal(t, 0, d.Index())

	for i := 0; i < 3; i++ {
		assert.False(t, d.Next())
	}
	assert.True(t, d.Last())
	assert.Equal(t, "Ready to Start?", d.Current().Title)
	assert.Equal(t, "Get Started", d.NextLabel())
	assert.False(t, d.Done())

	assert.True(t, d.Next())
	assert.True(t, d.Done())

	d.GoTo(1)
	assert.Equal(t, "Save Time. It is Worthy", d.Current().Title)
	d.GoTo(9)
	assert.Equal(t, 1, d.Index())
}

package cli_test

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/locvowork/taskflow/internal/apiclient"
	"github.com/locvowork/taskflow/internal/bootstrap"
	"github.com/locvowork/taskflow/internal/cli"
	"github.com/locvowork/taskflow/internal/credential"
	"github.com/locvowork/taskflow/internal/domain"
	"github.com/locvowork/taskflow/internal/testutil/fakeapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const email = "grace@example.com"

func newTestApp(t *testing.T) (*bootstrap.App, *fakeapi.Server) {
	srv := fakeapi.New(t)
	app := bootstrap.NewApp()
	app.API = apiclient.New(srv.URL(), 0)
	app.Wire(credential.NewMemoryBackend(), credential.NewMemoryBackend())
	return app, srv
}

func run(t *testing.T, app *bootstrap.App, input string, args ...string) (string, error) {
	t.Helper()
	cmd := cli.NewRootCmd(app, "1.2.3")
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetIn(strings.NewReader(input))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func mustRun(t *testing.T, app *bootstrap.App, input string, args ...string) string {
	t.Helper()
	out, err := run(t, app, input, args...)
	require.NoError(t, err, out)
	return out
}

func TestVersion(t *testing.T) {
	app, _ := newTestApp(t)
	assert.Equal(t, "taskflow 1.2.3\n", mustRun(t, app, "", "version"))
}

func TestCommandsRequireSession(t *testing.T) {
	app, srv := newTestApp(t)

	for _, args := range [][]string{{"whoami"}, {"tasks", "list"}, {"stats"}, {"tasks", "toggle", "1"}} {
		_, err := run(t, app, "", args...)
		assert.ErrorContains(t, err, "not signed in")
	}
	assert.Equal(t, 0, srv.TotalHits())
}

func TestRegisterValidation(t *testing.T) {
	app, srv := newTestApp(t)

	_, err := run(t, app, "", "register", "-n", "Grace Hopper", "-e", email, "-p", "cobol60", "--confirm", "cobol61")
	assert.EqualError(t, err, "Passwords do not match")

	_, err = run(t, app, "", "register", "-n", "Grace Hopper", "-e", "not-an-email", "-p", "cobol60", "--confirm", "cobol60")
	assert.EqualError(t, err, "Please enter a valid email address")

	_, err = run(t, app, "", "register", "-n", "Grace Hopper", "-e", email)
	assert.EqualError(t, err, "Please fill in all fields")
	assert.Equal(t, 0, srv.TotalHits())
}

func TestTaskCommands(t *testing.T) {
	app, srv := newTestApp(t)

	out := mustRun(t, app, "", "register", "-n", "Grace Hopper", "-e", email, "-p", "cobol60", "--confirm", "cobol60")
	assert.Contains(t, out, "Account created. Welcome, Grace Hopper")
	assert.Contains(t, mustRun(t, app, "", "whoami"), "Grace Hopper <grace@example.com>")

	assert.Equal(t, "Added task #1: Buy milk\n", mustRun(t, app, "", "tasks", "add", "Buy", "milk", "-p", "high"))
	mustRun(t, app, "", "tasks", "add", "Walk dog", "--due", "2030-01-02")

	_, err := run(t, app, "", "tasks", "add", "   ")
	assert.EqualError(t, err, "Task title is required")
	_, err = run(t, app, "", "tasks", "add", "x", "-p", "urgent")
	assert.Error(t, err)

	out = mustRun(t, app, "", "tasks", "list")
	assert.Contains(t, out, "All Tasks")
	assert.Less(t, strings.Index(out, "Walk dog"), strings.Index(out, "Buy milk"))
	assert.Contains(t, out, "2030-01-02")

	assert.Equal(t, "Task #1 is now completed\n", mustRun(t, app, "", "tasks", "toggle", "1"))
	out = mustRun(t, app, "", "tasks", "list", "--filter", "completed")
	assert.Contains(t, out, "Completed Tasks")
	assert.Contains(t, out, "Buy milk")
	assert.NotContains(t, out, "Walk dog")

	assert.Equal(t, "Total: 2\nPending: 1\nCompleted: 1\n", mustRun(t, app, "", "stats"))

	assert.Equal(t, "Updated task #2: Walk the dog\n", mustRun(t, app, "", "tasks", "edit", "2", "--title", "Walk the dog"))
	_, err = run(t, app, "", "tasks", "edit", "2")
	assert.EqualError(t, err, "Nothing to update")

	out = mustRun(t, app, "n\n", "tasks", "delete", "2")
	assert.Contains(t, out, "Are you sure you want to delete this task? [y/N]: ")
	assert.Contains(t, out, "Cancelled")
	assert.Len(t, srv.Tasks(email), 2)

	assert.Contains(t, mustRun(t, app, "y\n", "tasks", "delete", "2"), "Deleted task #2")
	assert.Contains(t, mustRun(t, app, "", "tasks", "rm", "1", "--yes"), "Deleted task #1")
	assert.Empty(t, srv.Tasks(email))
	assert.Contains(t, mustRun(t, app, "", "tasks", "list"), "No tasks found")

	assert.Equal(t, "Signed out\n", mustRun(t, app, "", "logout"))
	_, err = run(t, app, "", "whoami")
	assert.Error(t, err)
}

func TestLoginPrompts(t *testing.T) {
	app, srv := newTestApp(t)
	srv.SeedUser("Grace Hopper", email, "cobol60")

	_, err := run(t, app, email+"\nwrong-password\n", "login")
	assert.EqualError(t, err, "Invalid email or password")

	out := mustRun(t, app, email+"\ncobol60\n", "login")
	assert.Contains(t, out, "Email: Password: ")
	assert.Contains(t, out, "Welcome back, Grace Hopper")

	cred, err := app.Credentials.Get(context.Background(), domain.TierSession)
	require.NoError(t, err)
	assert.Nil(t, cred.ExpiresAt)

	mustRun(t, app, "", "login", "-e", email, "-p", "cobol60", "--remember")
	assert.Contains(t, mustRun(t, app, "", "whoami"), "Remembered until")
	_, err = app.Credentials.Get(context.Background(), domain.TierSession)
	assert.ErrorIs(t, err, domain.ErrNoCredential)

	srv.Close()
	_, err = run(t, app, "", "login", "-e", email, "-p", "cobol60")
	assert.EqualError(t, err, "Network error. Please check if the server is running.")
}

func TestExport(t *testing.T) {
	app, srv := newTestApp(t)
	srv.SeedUser("Grace Hopper", email, "cobol60")
	srv.SeedTask(email, domain.Task{Title: "Buy milk"})
	srv.SeedTask(email, domain.Task{Title: "Walk dog", Completed: true})
	mustRun(t, app, "", "login", "-e", email, "-p", "cobol60")

	path := filepath.Join(t.TempDir(), "tasks.xlsx")
	assert.Equal(t, "Exported 1 tasks to "+path+"\n", mustRun(t, app, "", "export", "-o", path, "-f", "active"))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Tasks")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Buy milk", rows[1][1])
}

func TestShellFirstRun(t *testing.T) {
	app, srv := newTestApp(t)

	script := strings.Join([]string{
		"", "b", "", "", "", "", // onboarding: next, back, then through the last slide
		"",                                         // login: go to register
		"Grace Hopper", email, "cobol60", "cobol6", // mismatch
		"Grace Hopper", email, "cobol60", "cobol60",
		"add Buy milk", "", "", "high",
		"toggle 1",
		"stats",
		"bogus",
		"logout",
		"q",
	}, "\n") + "\n"

	out := mustRun(t, app, script, "shell")

	assert.Contains(t, out, "(1/4) Welcome to TaskFlow")
	assert.Contains(t, out, "(4/4) Ready to Start?")
	assert.Contains(t, out, "Get Started")
	assert.Contains(t, out, "Create your account")
	assert.Contains(t, out, "Error: Passwords do not match")
	assert.Contains(t, out, "Added task #1: Buy milk")
	assert.Contains(t, out, "Task #1 is now completed")
	assert.Contains(t, out, "Total: 1\nPending: 0\nCompleted: 1\n")
	assert.Contains(t, out, `Unknown command "bogus"`)
	assert.Contains(t, out, "Signed out")
	assert.True(t, strings.HasSuffix(out, "Bye\n"))

	tasks := srv.Tasks(email)
	require.Len(t, tasks, 1)
	assert.Equal(t, domain.PriorityHigh, tasks[0].Priority)
}

func TestShellRestoresRememberedSession(t *testing.T) {
	app, srv := newTestApp(t)
	srv.SeedUser("Grace Hopper", email, "cobol60")
	srv.SeedTask(email, domain.Task{Title: "Buy milk"})
	_, err := app.Session.Authenticate(context.Background(), email, "cobol60", true)
	require.NoError(t, err)

	out := mustRun(t, app, "delete 1\nn\nlist active\nquit\n")

	assert.NotContains(t, out, "Welcome to TaskFlow")
	assert.Contains(t, out, "Welcome back, Grace Hopper")
	assert.Contains(t, out, "Cancelled")
	assert.Contains(t, out, "Active Tasks")
	assert.Len(t, srv.Tasks(email), 1)
}

func TestShellEndsOnEOF(t *testing.T) {
	app, _ := newTestApp(t)
	out := mustRun(t, app, "", "shell")
	assert.Contains(t, out, "TaskFlow")
	assert.True(t, strings.HasSuffix(out, "Bye\n"))
}

package apiclient_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/locvowork/taskflow/internal/apiclient"
	"github.com/locvowork/taskflow/internal/domain"
	"github.com/locvowork/taskflow/internal/testutil/fakeapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientAuth(t *testing.T) {
	ctx := context.Background()
	srv := fakeapi.New(t)
	client := apiclient.New(srv.URL(), 0)

	t.Run("RegisterThenLogin", func(t *testing.T) {
		reg, err := client.Register(ctx, "Ada Lovelace", "ada@example.com", "engine1")
		require.NoError(t, err)
		assert.NotEmpty(t, reg.Token)
		assert.Equal(t, "Ada Lovelace", reg.User.FullName)

		login, err := client.Login(ctx, "ada@example.com", "engine1")
		require.NoError(t, err)
		assert.NotEmpty(t, login.Token)
		assert.Equal(t, reg.User.ID, login.User.ID)
	})

	t.Run("WrongPasswordIsLogical", func(t *testing.T) {
		_, err := client.Login(ctx, "ada@example.com", "nope")
		msg, ok := apiclient.IsLogical(err)
		require.True(t, ok, "expected logical error, got %v", err)
		assert.Equal(t, "Invalid email or password", msg)
	})
}

func TestClientTasks(t *testing.T) {
	ctx := context.Background()
	srv := fakeapi.New(t)
	token, _ := srv.SeedUser("Grace Hopper", "grace@example.com", "cobol60")
	client := apiclient.New(srv.URL(), 0)

	created, err := client.CreateTask(ctx, token, domain.Draft{Title: "Write compiler"}.Normalize())
	require.NoError(t, err)
	assert.Equal(t, "Write compiler", created.Title)
	assert.Equal(t, domain.PriorityMedium, created.Priority)
	assert.False(t, bool(created.Completed))

	done := true
	updated, err := client.UpdateTask(ctx, token, created.ID, domain.Patch{Completed: &done})
	require.NoError(t, err)
	assert.True(t, bool(updated.Completed))
	assert.Equal(t, "Write compiler", updated.Title)

	tasks, err := client.ListTasks(ctx, token)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)

	require.NoError(t, client.DeleteTask(ctx, token, created.ID))
	tasks, err = client.ListTasks(ctx, token)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	err = client.DeleteTask(ctx, token, created.ID)
	msg, ok := apiclient.IsLogical(err)
	assert.True(t, ok)
	assert.Equal(t, "Todo not found", msg)
}

func TestClientRequiresBearer(t *testing.T) {
	srv := fakeapi.New(t)
	client := apiclient.New(srv.URL(), 0)

	_, err := client.ListTasks(context.Background(), "not-a-token")
	_, ok := apiclient.IsLogical(err)
	assert.True(t, ok)
}

func TestClientTransportFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("NonJSONBody", func(t *testing.T) {
		srv := fakeapi.New(t)
		srv.BreakNext(http.MethodPost, "/login.php")

		_, err := apiclient.New(srv.URL(), 0).Login(ctx, "a@b.co", "secret")
		var te *apiclient.TransportError
		assert.True(t, errors.As(err, &te), "expected transport error, got %v", err)
	})

	t.Run("ConnectionRefused", func(t *testing.T) {
		srv := fakeapi.New(t)
		srv.Close()

		_, err := apiclient.New(srv.URL(), 0).Login(ctx, "a@b.co", "secret")
		var te *apiclient.TransportError
		assert.True(t, errors.As(err, &te))
	})

	t.Run("SuccessWithoutData", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"success":true}`))
		}))
		defer ts.Close()

		_, err := apiclient.New(ts.URL, 0).CreateTask(ctx, "tok", domain.Draft{Title: "x"})
		var te *apiclient.TransportError
		assert.True(t, errors.As(err, &te))
	})
}

func TestClientSendsHeaders(t *testing.T) {
	var got http.Header
	var body []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		body, _ = io.ReadAll(r.Body)
		_, _ = w.Write([]byte(`{"success":true,"data":{"id":4,"title":"t","completed":1}}`))
	}))
	defer ts.Close()

	done := false
	task, err := apiclient.New(ts.URL, 0).UpdateTask(context.Background(), "tok-123", 4, domain.Patch{Completed: &done})
	require.NoError(t, err)
	assert.True(t, bool(task.Completed))

	assert.Equal(t, "Bearer tok-123", got.Get("Authorization"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
	assert.JSONEq(t, `{"id":4,"completed":false}`, string(body))
}

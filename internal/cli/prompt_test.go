package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrompterSecret(t *testing.T) {
	t.Run("PipedInputReadsLine", func(t *testing.T) {
		out := new(bytes.Buffer)
		p := newPrompter(strings.NewReader("hunter2\nnext\n"), out)
		assert.Nil(t, p.readSecret)

		v, err := p.secret("Password: ")
		require.NoError(t, err)
		assert.Equal(t, "hunter2", v)
		next, err := p.ask("Email: ")
		require.NoError(t, err)
		assert.Equal(t, "next", next)
		assert.Equal(t, "Password: Email: ", out.String())
	})

	t.Run("RegularFileIsNotATerminal", func(t *testing.T) {
		f, err := os.CreateTemp(t.TempDir(), "input")
		require.NoError(t, err)
		defer f.Close()
		p := newPrompter(f, io.Discard)
		assert.Nil(t, p.readSecret)
	})

	t.Run("TerminalInputIsNotEchoed", func(t *testing.T) {
		out := new(bytes.Buffer)
		p := newPrompter(strings.NewReader("visible\n"), out)
		p.readSecret = func() ([]byte, error) { return []byte(" s3cret "), nil }

		v, err := p.secret("Password: ")
		require.NoError(t, err)
		assert.Equal(t, "s3cret", v)
		assert.Equal(t, "Password: \n", out.String())
		assert.NotContains(t, out.String(), "s3cret")

		line, err := p.ask("Email: ")
		require.NoError(t, err)
		assert.Equal(t, "visible", line, "secret reads leave buffered input alone")
	})

	t.Run("TerminalErrorIsReturned", func(t *testing.T) {
		p := newPrompter(strings.NewReader(""), io.Discard)
		boom := errors.New("tty gone")
		p.readSecret = func() ([]byte, error) { return nil, boom }

		var field string
		assert.ErrorIs(t, p.fillSecret(&field, "Password: "), boom)
		assert.Empty(t, field)
	})

	t.Run("FillSecretKeepsPresetValue", func(t *testing.T) {
		p := newPrompter(strings.NewReader(""), io.Discard)
		p.readSecret = func() ([]byte, error) {
			t.Fatal("preset value must not prompt")
			return nil, nil
		}
		field := "from-flag"
		require.NoError(t, p.fillSecret(&field, "Password: "))
		assert.Equal(t, "from-flag", field)
	})
}

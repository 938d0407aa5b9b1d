package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter reads answers line by line. One prompter must own the input for
// the whole command since it buffers.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	// readSecret reads one line without echo; nil unless input is a terminal.
	readSecret func() ([]byte, error)
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{in: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fd := int(f.Fd())
		p.readSecret = func() ([]byte, error) { return term.ReadPassword(fd) }
	}
	return p
}

// ask prints label and returns the trimmed answer, or io.EOF once input is exhausted.
func (p *prompter) ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// secret is ask with echo turned off on a terminal. Piped input is read as a
// plain line.
func (p *prompter) secret(label string) (string, error) {
	if p.readSecret == nil {
		return p.ask(label)
	}
	fmt.Fprint(p.out, label)
	b, err := p.readSecret()
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}

// fill asks for *field unless it is already set. Exhausted input leaves it empty.
func (p *prompter) fill(field *string, label string) error {
	return p.fillWith(p.ask, field, label)
}

func (p *prompter) fillSecret(field *string, label string) error {
	return p.fillWith(p.secret, field, label)
}

func (p *prompter) fillWith(read func(string) (string, error), field *string, label string) error {
	if *field != "" {
		return nil
	}
	v, err := read(label)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	*field = v
	return nil
}

func (p *prompter) Confirm(prompt string) (bool, error) {
	ans, err := p.ask(prompt + " [y/N]: ")
	if errors.Is(err, io.EOF) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	switch strings.ToLower(ans) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

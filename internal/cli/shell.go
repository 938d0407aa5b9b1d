package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/locvowork/taskflow/internal/bootstrap"
	"github.com/locvowork/taskflow/internal/credential"
	"github.com/locvowork/taskflow/internal/domain"
	"github.com/locvowork/taskflow/internal/screen"
	"github.com/locvowork/taskflow/internal/taskstore"
	"github.com/spf13/cobra"
)

var errQuit = errors.New("quit")

const shellHelp = `Commands:
  list [all|active|completed]   show tasks
  add <title>                   add a task
  edit <id>                     change a task
  toggle <id>                   mark completed or pending
  delete <id>                   delete a task
  stats                         show counts
  refresh                       reload from the server
  export [file.xlsx]            write an Excel report
  logout                        sign out
  quit                          leave the shell`

func (c *cli) shellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell",
		Args:  cobra.NoArgs,
		RunE:  c.runShell,
	}
}

func (c *cli) runShell(cmd *cobra.Command, _ []string) error {
	// A non-remembered login lasts as long as the shell.
	c.app.Wire(c.app.Durable, credential.NewMemoryBackend())

	sh := &shell{
		app:     c.app,
		p:       newPrompter(cmd.InOrStdin(), cmd.OutOrStdout()),
		out:     cmd.OutOrStdout(),
		machine: screen.NewMachine(),
	}
	err := sh.run(cmd.Context())
	if errors.Is(err, errQuit) || errors.Is(err, io.EOF) {
		fmt.Fprintln(sh.out, "Bye")
		return nil
	}
	return err
}

type shell struct {
	app     *bootstrap.App
	p       *prompter
	out     io.Writer
	machine *screen.Machine
	cred    *domain.Credential
}

func (s *shell) run(ctx context.Context) error {
	for {
		var err error
		switch current := s.machine.Current(); current {
		case screen.Loader:
			err = s.loader(ctx)
		case screen.Onboarding:
			err = s.onboarding()
		case screen.Login:
			err = s.login(ctx)
		case screen.Register:
			err = s.register(ctx)
		case screen.Workspace:
			err = s.workspace(ctx)
		default:
			err = fmt.Errorf("unhandled screen %s", current)
		}
		if err != nil {
			return err
		}
	}
}

func (s *shell) fire(ev screen.Event) error {
	_, err := s.machine.Fire(ev)
	return err
}

func (s *shell) loader(ctx context.Context) error {
	fmt.Fprintln(s.out, "TaskFlow")
	cred, ok, err := s.app.Session.RestoreSession(ctx)
	if err != nil {
		return err
	}
	if ok {
		s.cred = cred
		return s.fire(screen.Restored)
	}

	timer := time.NewTimer(s.app.LoaderDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		return ctx.Err()
	}
	return s.fire(screen.NoSession)
}

func (s *shell) onboarding() error {
	deck := screen.NewDeck()
	for {
		slide := deck.Current()
		fmt.Fprintf(s.out, "\n(%d/%d) %s\n%s\n", deck.Index()+1, deck.Len(), slide.Title, slide.Description)
		ans, err := s.p.ask(fmt.Sprintf("[enter] %s  [b] back  [1-%d] jump  [q] quit: ", deck.NextLabel(), deck.Len()))
		if err != nil {
			return err
		}
		switch ans {
		case "", "n":
			if deck.Next() {
				return s.fire(screen.OnboardingDone)
			}
		case "b", "p":
			deck.Prev()
		case "q":
			return errQuit
		default:
			if n, err := strconv.Atoi(ans); err == nil {
				deck.GoTo(n - 1)
			}
		}
	}
}

func (s *shell) login(ctx context.Context) error {
	fmt.Fprintln(s.out, "\nSign in to your account")
	email, err := s.p.ask("Email (blank to register, q to quit): ")
	if err != nil {
		return err
	}
	switch email {
	case "":
		return s.fire(screen.ShowRegister)
	case "q":
		return errQuit
	}
	password, err := s.p.secret("Password: ")
	if err != nil {
		return err
	}
	remember, err := s.p.Confirm("Remember me?")
	if err != nil {
		return err
	}

	cred, err := s.app.Session.Authenticate(ctx, email, password, remember)
	if err != nil {
		fmt.Fprintln(s.out, "Error:", err)
		return nil
	}
	s.cred = cred
	return s.fire(screen.Authenticated)
}

func (s *shell) register(ctx context.Context) error {
	fmt.Fprintln(s.out, "\nCreate your account")
	fullName, err := s.p.ask("Full name (blank to go back): ")
	if err != nil {
		return err
	}
	if fullName == "" {
		return s.fire(screen.BackToLogin)
	}
	email, err := s.p.ask("Email: ")
	if err != nil {
		return err
	}
	var password, confirm string
	for _, f := range []struct {
		field *string
		label string
	}{
		{&password, "Password: "},
		{&confirm, "Confirm password: "},
	} {
		if *f.field, err = s.p.secret(f.label); err != nil {
			return err
		}
	}

	cred, err := s.app.Session.Register(ctx, fullName, email, password, confirm)
	if err != nil {
		fmt.Fprintln(s.out, "Error:", err)
		return nil
	}
	s.cred = cred
	return s.fire(screen.Authenticated)
}

func (s *shell) workspace(ctx context.Context) error {
	store := s.app.NewTaskStore(s.cred)
	defer store.Close()

	fmt.Fprintf(s.out, "\nWelcome back, %s\n", s.cred.User.FullName)
	if err := store.LoadAll(ctx); err != nil {
		fmt.Fprintln(s.out, "Error:", err)
	}
	printTasks(s.out, domain.FilterAll, store.Tasks())
	fmt.Fprintln(s.out, `Type "help" for commands.`)

	for {
		line, err := s.p.ask("> ")
		if err != nil {
			return err
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		verb, rest := fields[0], strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

		switch verb {
		case "logout":
			if err := s.app.Session.Logout(ctx); err != nil {
				return err
			}
			s.cred = nil
			fmt.Fprintln(s.out, "Signed out")
			return s.fire(screen.LoggedOut)
		case "quit", "exit":
			return errQuit
		default:
			if err := s.exec(ctx, store, verb, rest); err != nil {
				if errors.Is(err, io.EOF) {
					return err
				}
				fmt.Fprintln(s.out, "Error:", err)
			}
		}
	}
}

func (s *shell) exec(ctx context.Context, store *taskstore.Store, verb, rest string) error {
	switch verb {
	case "help", "?":
		fmt.Fprintln(s.out, shellHelp)
	case "list", "ls":
		f, err := domain.ParseFilter(rest)
		if err != nil {
			return err
		}
		printTasks(s.out, f, store.Filter(f))
	case "add":
		return s.add(ctx, store, rest)
	case "edit":
		return s.edit(ctx, store, rest)
	case "toggle", "done":
		id, err := domain.ParseID(rest)
		if err != nil {
			return err
		}
		task, err := store.ToggleCompleted(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Task #%s is now %s\n", task.ID, statusOf(*task))
	case "delete", "rm":
		id, err := domain.ParseID(rest)
		if err != nil {
			return err
		}
		deleted, err := store.Delete(ctx, id, s.p)
		if err != nil {
			return err
		}
		printDeleted(s.out, id, deleted)
	case "stats":
		printStats(s.out, store.Stats())
	case "refresh":
		if err := store.LoadAll(ctx); err != nil {
			return err
		}
		printTasks(s.out, domain.FilterAll, store.Tasks())
	case "export":
		path := rest
		if path == "" {
			path = "tasks.xlsx"
		}
		n, err := exportTasks(path, store, domain.FilterAll)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Exported %d tasks to %s\n", n, path)
	default:
		fmt.Fprintf(s.out, "Unknown command %q, type \"help\"\n", verb)
	}
	return nil
}

func (s *shell) add(ctx context.Context, store *taskstore.Store, title string) error {
	if title == "" {
		var err error
		if title, err = s.p.ask("Title: "); err != nil {
			return err
		}
	}
	description, err := s.p.ask("Description: ")
	if err != nil {
		return err
	}
	due, err := s.p.ask("Due date (YYYY-MM-DD): ")
	if err != nil {
		return err
	}
	priority, err := s.p.ask("Priority [medium]: ")
	if err != nil {
		return err
	}

	draft, err := newDraft(title, description, due, priority)
	if err != nil {
		return err
	}
	task, err := store.Add(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Added task #%s: %s\n", task.ID, task.Title)
	return nil
}

// edit prompts for each field showing the current value; a blank answer keeps it.
func (s *shell) edit(ctx context.Context, store *taskstore.Store, arg string) error {
	id, err := domain.ParseID(arg)
	if err != nil {
		return err
	}
	current, ok := store.Find(id)
	if !ok {
		return fmt.Errorf("edit task %s: %w", id, domain.ErrTaskNotFound)
	}

	var patch domain.Patch
	if v, err := s.p.ask(fmt.Sprintf("Title [%s]: ", current.Title)); err != nil {
		return err
	} else if v != "" {
		patch.Title = &v
	}
	if v, err := s.p.ask(fmt.Sprintf("Description [%s]: ", current.Description)); err != nil {
		return err
	} else if v != "" {
		patch.Description = &v
	}
	if v, err := s.p.ask(fmt.Sprintf("Due date [%s]: ", current.DueDate)); err != nil {
		return err
	} else if v != "" {
		d, err := domain.ParseDate(v)
		if err != nil {
			return err
		}
		patch.DueDate = &d
	}
	if v, err := s.p.ask(fmt.Sprintf("Priority [%s]: ", current.Priority)); err != nil {
		return err
	} else if v != "" {
		p, err := domain.ParsePriority(v)
		if err != nil {
			return err
		}
		patch.Priority = &p
	}
	if patch.Empty() {
		fmt.Fprintln(s.out, "Nothing changed")
		return nil
	}

	task, err := store.Update(ctx, id, patch)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Updated task #%s: %s\n", task.ID, task.Title)
	return nil
}

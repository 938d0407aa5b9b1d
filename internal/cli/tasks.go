package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/locvowork/taskflow/internal/domain"
	"github.com/locvowork/taskflow/internal/report"
	"github.com/locvowork/taskflow/internal/taskstore"
	"github.com/spf13/cobra"
)

var filterHeadings = map[domain.Filter]string{
	domain.FilterAll:       "All Tasks",
	domain.FilterActive:    "Active Tasks",
	domain.FilterCompleted: "Completed Tasks",
}

func (c *cli) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "todo"},
		Short:   "List and change your tasks",
	}
	cmd.AddCommand(c.listCmd())
	cmd.AddCommand(c.addCmd())
	cmd.AddCommand(c.editCmd())
	cmd.AddCommand(c.toggleCmd())
	cmd.AddCommand(c.deleteCmd())
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := domain.ParseFilter(filter)
			if err != nil {
				return err
			}
			store, _, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			printTasks(cmd.OutOrStdout(), f, store.Filter(f))
			return nil
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "all, active or completed")
	return cmd
}

func (c *cli) addCmd() *cobra.Command {
	var description, due, priority string
	cmd := &cobra.Command{
		Use:   "add <title...>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := newDraft(strings.Join(args, " "), description, due, priority)
			if err != nil {
				return err
			}
			store, _, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			task, err := store.Add(cmd.Context(), draft)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added task #%s: %s\n", task.ID, task.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "Details")
	cmd.Flags().StringVar(&due, "due", "", "Due date (YYYY-MM-DD)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "medium", "low, medium or high")
	return cmd
}

func (c *cli) editCmd() *cobra.Command {
	var title, description, due, priority string
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change fields of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}
			var patch domain.Patch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("due") {
				d, err := domain.ParseDate(due)
				if err != nil {
					return err
				}
				patch.DueDate = &d
			}
			if flags.Changed("priority") {
				p, err := domain.ParsePriority(priority)
				if err != nil {
					return err
				}
				patch.Priority = &p
			}

			store, _, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			task, err := store.Update(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated task #%s: %s\n", task.ID, task.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "New details")
	cmd.Flags().StringVar(&due, "due", "", "New due date (YYYY-MM-DD, empty clears)")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium or high")
	return cmd
}

func (c *cli) toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Mark a task completed or pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}
			store, _, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			task, err := store.ToggleCompleted(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Task #%s is now %s\n", task.ID, statusOf(*task))
			return nil
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseID(args[0])
			if err != nil {
				return err
			}
			store, _, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()

			var confirm taskstore.Confirmer = newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
			if yes {
				confirm = taskstore.ConfirmFunc(func(string) (bool, error) { return true, nil })
			}
			deleted, err := store.Delete(cmd.Context(), id, confirm)
			if err != nil {
				return err
			}
			printDeleted(cmd.OutOrStdout(), id, deleted)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	return cmd
}

func (c *cli) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, _, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			printStats(cmd.OutOrStdout(), store.Stats())
			return nil
		},
	}
}

func (c *cli) exportCmd() *cobra.Command {
	var out, filter string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks to an Excel workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := domain.ParseFilter(filter)
			if err != nil {
				return err
			}
			store, _, err := c.workspace(cmd.Context())
			if err != nil {
				return err
			}
			defer store.Close()
			n, err := exportTasks(out, store, f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d tasks to %s\n", n, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "tasks.xlsx", "Output file")
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "all, active or completed")
	return cmd
}

func newDraft(title, description, due, priority string) (domain.Draft, error) {
	d, err := domain.ParseDate(due)
	if err != nil {
		return domain.Draft{}, err
	}
	p, err := domain.ParsePriority(priority)
	if err != nil {
		return domain.Draft{}, err
	}
	return domain.Draft{Title: title, Description: description, DueDate: d, Priority: p}, nil
}

func exportTasks(path string, store *taskstore.Store, f domain.Filter) (int, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	tasks := store.Filter(f)
	if err := report.ExportTasks(file, tasks, store.Stats()); err != nil {
		file.Close()
		return 0, err
	}
	return len(tasks), file.Close()
}

func statusOf(t domain.Task) string {
	if t.Completed {
		return "completed"
	}
	return "pending"
}

func printTasks(w io.Writer, f domain.Filter, tasks []domain.Task) {
	fmt.Fprintln(w, filterHeadings[f])
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tTITLE\tPRIORITY\tDUE")
	for _, t := range tasks {
		done := " "
		if t.Completed {
			done = "x"
		}
		fmt.Fprintf(tw, "%s\t[%s]\t%s\t%s\t%s\n", t.ID, done, t.Title, t.Priority, t.DueDate)
	}
	tw.Flush()
}

func printStats(w io.Writer, st domain.Stats) {
	fmt.Fprintf(w, "Total: %d\nPending: %d\nCompleted: %d\n", st.Total, st.Pending, st.Completed)
}

func printDeleted(w io.Writer, id domain.FlexID, deleted bool) {
	if deleted {
		fmt.Fprintf(w, "Deleted task #%s\n", id)
		return
	}
	fmt.Fprintln(w, "Cancelled")
}

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"errday/pkg/commands"
	"errday/pkg/config"
	"errday/pkg/database"
	"errday/pkg/database/sqlite"
	"errday/pkg/utils"
)

// Runner starts the interactive interface on an open store
type Runner func(store *database.Store, cfg config.Config, styles config.Styles) error

// app is the state shared by the root command and its subcommands
type app struct {
	configPath string
	verbose    bool

	cfg    config.Config
	styles config.Styles
	store  *database.Store
	closer func()
	now    func() time.Time
}

// Execute runs the command line, starting the TUI when no subcommand is given
func Execute(run Runner) error {
	a := &app{now: time.Now}
	defer a.close()
	return newRootCommand(a, run).Execute()
}

// newRootCommand wires the errday command tree
func newRootCommand(a *app, run Runner) *cobra.Command {
	root := &cobra.Command{
		Use:          database.AppName,
		Short:        "errday - capture, sort and schedule your tasks",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(a.store, a.cfg, a.styles)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to configuration file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(
		addCommand(a),
		listCommand(a),
		sortCommand(a),
		doneCommand(a),
		deleteCommand(a),
		scheduleCommand(a),
		unscheduleCommand(a),
		exportCommand(a),
		importCommand(a),
		purgeCommand(a),
	)
	return root
}

// open loads the configuration and the store behind it
func (a *app) open() error {
	if logPath := utils.InitLogger(a.verbose); logPath != "" {
		fmt.Fprintf(os.Stderr, "Logging to %s\n", logPath)
	}

	cfg, styles, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg, a.styles = cfg, styles

	store, closer, err := OpenStore(cfg)
	if err != nil {
		return err
	}
	a.store, a.closer = store, closer
	utils.Log("Using %s storage at %s", cfg.Storage, store.Location())
	return nil
}

func (a *app) close() {
	if a.closer != nil {
		a.closer()
		a.closer = nil
	}
	utils.CloseLogger()
}

// OpenStore opens the configured backend. The returned func releases it.
func OpenStore(cfg config.Config) (*database.Store, func(), error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		path := cfg.DataFile
		if path == "" {
			path = sqlite.DefaultPath()
		}
		backend, err := sqlite.Open(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open database: %w", err)
		}
		return database.Open(backend), func() { backend.Close() }, nil

	default:
		path := cfg.DataFile
		if path == "" {
			path = database.DefaultDataPath()
		}
		backend, err := database.NewFileBackend(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open data file: %w", err)
		}
		return database.Open(backend), func() {}, nil
	}
}

func printTask(w io.Writer, verb string, t database.Task) {
	fmt.Fprintf(w, "%s %s %q (%s)\n", verb, commands.ShortID(t), t.Title, t.Quadrant.Label())
}

func addCommand(a *app) *cobra.Command {
	var quadrant, notes string
	cmd := &cobra.Command{
		Use:   "add <title>...",
		Short: "Capture a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := commands.AddTask(a.store, strings.Join(args, " "), quadrant, notes)
			if err != nil {
				return err
			}
			printTask(cmd.OutOrStdout(), "Added", t)
			return nil
		},
	}
	cmd.Flags().StringVarP(&quadrant, "quadrant", "q", "", "File the task under a quadrant")
	cmd.Flags().StringVarP(&notes, "notes", "n", "", "Notes for the task")
	return cmd
}

func listCommand(a *app) *cobra.Command {
	var opts commands.ListOptions
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks by quadrant",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return commands.ListTasks(cmd.OutOrStdout(), a.store.Tasks(), opts)
		},
	}
	cmd.Flags().StringVarP(&opts.Quadrant, "quadrant", "q", "", "Only show one quadrant")
	cmd.Flags().BoolVar(&opts.HideDone, "hide-done", false, "Leave out completed tasks")
	return cmd
}

func sortCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sort <id> <quadrant>",
		Short: "Move a task into a quadrant",
		Long:  "Move a task into a quadrant: DoFirst, Schedule, Delegate, Delete or Unsorted.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := commands.SortTask(a.store, args[0], args[1])
			if err != nil {
				return err
			}
			printTask(cmd.OutOrStdout(), "Moved", t)
			return nil
		},
	}
}

func doneCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "done <id>",
		Short: "Toggle a task between todo and done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := commands.ToggleDone(a.store, args[0])
			if err != nil {
				return err
			}
			verb := "Reopened"
			if t.IsDone() {
				verb = "Completed"
			}
			printTask(cmd.OutOrStdout(), verb, t)
			return nil
		},
	}
}

func deleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := commands.DeleteTask(a.store, args[0])
			if err != nil {
				return err
			}
			printTask(cmd.OutOrStdout(), "Deleted", t)
			return nil
		},
	}
}

func scheduleCommand(a *app) *cobra.Command {
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "schedule <id> <start>",
		Short: "Place a task on the calendar",
		Long:  "Place a task on the calendar. Start is \"YYYY-MM-DD HH:MM\", or \"HH:MM\" for today.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := commands.ParseStart(args[1], a.now())
			if err != nil {
				return err
			}
			if duration == 0 {
				duration = a.cfg.DefaultDuration
			}
			t, err := commands.ScheduleTask(a.store, args[0], start, duration)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Scheduled %s %q %s-%s\n", commands.ShortID(t), t.Title,
				t.ScheduledStart.Format("Mon Jan 2 15:04"), t.ScheduledEnd.Format("15:04"))
			return nil
		},
	}
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "Block length (defaults to default_duration)")
	return cmd
}

func unscheduleCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unschedule <id>",
		Short: "Take a task off the calendar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := commands.UnscheduleTask(a.store, args[0])
			if err != nil {
				return err
			}
			printTask(cmd.OutOrStdout(), "Unscheduled", t)
			return nil
		},
	}
}

func exportCommand(a *app) *cobra.Command {
	var format, output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export tasks as iCalendar, JSON, YAML or a text checklist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tasks := a.store.Tasks()
			if output == "-" {
				return commands.Export(cmd.OutOrStdout(), tasks, format, a.now())
			}
			if output == "" {
				if format != commands.FormatICS {
					return fmt.Errorf("--output is required for %s exports", format)
				}
				output = a.cfg.ExportFile
			}
			path, err := database.ExpandPath(output)
			if err != nil {
				return err
			}
			if err := commands.ExportFile(path, tasks, format, a.now()); err != nil {
				return err
			}
			n, noun := commands.Exported(tasks, format)
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d %s to %s\n", n, noun, path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "type", "t", commands.FormatICS, "Export type: "+strings.Join(commands.Formats, ", "))
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (ics defaults to export_file)")
	return cmd
}

func importCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a plain text checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := database.ExpandPath(args[0])
			if err != nil {
				return err
			}
			n, err := commands.ImportFile(a.store, path)
			if err != nil {
				return fmt.Errorf("import %s: %w", path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d task(s) from %s\n", n, path)
			return nil
		},
	}
}

func purgeCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:       "purge <done|all>",
		Short:     "Delete completed tasks, or every task",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{commands.PurgeDone, commands.PurgeAll},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				fmt.Fprintf(cmd.OutOrStdout(), "Are you sure you want to purge %s tasks? (y/N): ", args[0])
				var response string
				fmt.Fscanln(cmd.InOrStdin(), &response)
				if r := strings.ToLower(response); r != "y" && r != "yes" {
					fmt.Fprintln(cmd.OutOrStdout(), "Operation cancelled.")
					return nil
				}
			}
			n, err := commands.Purge(a.store, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Successfully deleted %d task(s)\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

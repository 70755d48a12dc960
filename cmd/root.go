package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/benoctopus/titan/internal/tty"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	dbPathFlag string
	verbose    bool

	// clock is the time source for every command; tests replace it through Run
	clock = time.Now

	// interactive reports whether prompts may be shown
	interactive = tty.IsInteractive
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "titan",
	Short: "Local-first workout log",
	Long: `titan records workouts, sets, and exercises in a local SQLite database.

It remembers what you lifted last time and which exercises belong on each day
of the week, so starting a session shows the plan and your previous numbers.

Examples:
  titan start                  # Start or resume today's workout
  titan log "Bench Press" 100 8
  titan show                   # Show the current workout
  titan previous squat         # What did I squat last time?
  titan finish                 # Mark the workout complete

Shell Completion:
  titan completion bash        # Generate bash completion
  titan completion zsh         # Generate zsh completion
  titan completion fish        # Generate fish completion
  titan completion powershell  # Generate powershell completion`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Options overrides the process environment for Run
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Clock  func() time.Time
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", eris.ToString(err, verbose))
		os.Exit(1)
	}
}

// Run executes the CLI with args in-process. Flags start from their defaults on
// every call.
func Run(ctx context.Context, args []string, opts Options) error {
	resetFlags(rootCmd)

	if opts.Clock != nil {
		clock = opts.Clock
		defer func() { clock = time.Now }()
	}

	if opts.Stdin != nil {
		if f, ok := opts.Stdin.(*os.File); !ok || !tty.IsTerminal(f) {
			interactive = func() bool { return false }
			defer func() { interactive = tty.IsInteractive }()
		}
	}

	rootCmd.SetArgs(args)
	rootCmd.SetIn(opts.Stdin)
	rootCmd.SetOut(opts.Stdout)
	rootCmd.SetErr(opts.Stderr)
	defer func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	return rootCmd.ExecuteContext(ctx)
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "db", "", "Database file (overrides TITAN_DB and config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging and full error traces")
}

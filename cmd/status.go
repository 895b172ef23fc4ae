package cmd

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	tugerrors "thoreinstein.com/tug/pkg/errors"
	"thoreinstein.com/tug/pkg/host"
	"thoreinstein.com/tug/pkg/status"
	"thoreinstein.com/tug/pkg/ui"
)

// Output formats of `tug status`.
const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

type StatusOptions struct {
	Poll   bool
	Output string
}

var statusOptions StatusOptions

// liveView shows snapshots while polling.
type liveView interface {
	Start()
	Render(*host.PullRequestStatus)
	Stop() error
}

// newLiveView builds the full-screen view, or returns nil when out is not a
// terminal. Tests replace it.
var newLiveView = func(out io.Writer, onQuit func()) liveView {
	f, ok := out.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return nil
	}
	return ui.NewLiveRenderer(os.Stdin, out, onQuit)
}

// statusCmd shows the checks and reviews of the pull request.
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show status of the pull request",
	Long: `Show the CI checks and the reviews of the current branch's pull request.

With --poll, the checks are fetched every status.poll_interval until none is
pending. Press q to stop waiting. The final status is always printed.

Examples:
  tug status              # Show the status once
  tug status --poll       # Wait for the checks to complete
  tug status -o json      # Machine-readable output`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newCommandEnv(cmd)
		if err != nil {
			return err
		}
		return runStatus(cmd.Context(), env, statusOptions, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().BoolVarP(&statusOptions.Poll, "poll", "p", false, "Regularly poll the CI host until the checks are complete")
	statusCmd.Flags().StringVarP(&statusOptions.Output, "output", "o", outputText, "Output format: text, json, yaml")
}

func runStatus(ctx context.Context, env *commandEnv, opts StatusOptions, w io.Writer) error {
	if !slices.Contains([]string{outputText, outputJSON, outputYAML}, opts.Output) {
		return tugerrors.NewConfigError("output", "invalid output format "+opts.Output+": must be one of: text, json, yaml")
	}

	pr, err := env.client.GetPullRequest(ctx, env.rc.Branch)
	if err != nil {
		return err
	}
	if pr == nil {
		return noPullRequestError(env.rc.Branch)
	}

	var snapshot *host.PullRequestStatus
	if opts.Poll {
		snapshot, err = pollStatus(ctx, env, opts, w)
	} else {
		snapshot, err = env.client.GetPullRequestStatus(ctx)
	}
	if err != nil {
		return err
	}
	if snapshot == nil {
		// Stopped before the first snapshot.
		return nil
	}

	return writeStatus(env, snapshot, opts.Output, w)
}

// pollStatus waits for the checks to settle. Snapshots go to the live view
// on a terminal, and are printed as plain text otherwise.
func pollStatus(ctx context.Context, env *commandEnv, opts StatusOptions, w io.Writer) (*host.PullRequestStatus, error) {
	poller := status.NewPoller(env.client, env.cfg.Status.PollInterval, verbose, status.WithLogger(slog.Default()))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var live liveView
	if opts.Output == outputText {
		live = newLiveView(w, cancel)
	}

	if live == nil {
		return poller.Run(ctx, func(s *host.PullRequestStatus) {
			if opts.Output == outputText {
				env.out.Println("Waiting for checks...")
				env.out.PrintChecks(s)
			}
		})
	}

	live.Start()
	snapshot, err := poller.Run(ctx, live.Render)
	if stopErr := live.Stop(); err == nil && stopErr != nil {
		err = tugerrors.Wrap(stopErr, "failed to restore the terminal")
	}
	return snapshot, err
}

func writeStatus(env *commandEnv, snapshot *host.PullRequestStatus, output string, w io.Writer) error {
	switch output {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snapshot)

	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snapshot); err != nil {
			return err
		}
		return enc.Close()
	}

	localSHA, err := env.rc.Repo.CurrentSHA("HEAD")
	if err != nil {
		slog.Debug("could not read local HEAD", "error", err)
		localSHA = ""
	}
	env.out.PrintStatus(snapshot, localSHA)
	return nil
}

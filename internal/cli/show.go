package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/floorplace/floorplace/pkg/store"
)

// showOpts holds the command-line flags for the show command.
type showOpts struct {
	storeKind string // run store backend: "file" or "mongo"
	asJSON    bool   // emit raw JSON instead of the formatted view
	trace     bool   // include the objective trace
	remove    bool   // delete the run instead of showing it
}

// showCommand creates the show command: without arguments it lists saved
// runs, with a run ID it prints that run's details.
func (c *CLI) showCommand() *cobra.Command {
	var opts showOpts

	cmd := &cobra.Command{
		Use:   "show [run-id]",
		Short: "List saved runs or inspect a single run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				if opts.remove {
					return fmt.Errorf("--rm requires a run ID")
				}
				return c.listRuns(cmd.Context(), &opts)
			}
			if opts.remove {
				return c.removeRun(cmd.Context(), args[0], &opts)
			}
			return c.showRun(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVar(&opts.storeKind, "store", "file", "run store backend: file or mongo")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "emit raw JSON")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "include the objective trace")
	cmd.Flags().BoolVar(&opts.remove, "rm", false, "delete the run")

	return cmd
}

// listRuns prints a summary line per saved run, newest first.
func (c *CLI) listRuns(ctx context.Context, opts *showOpts) error {
	s, err := newStore(ctx, opts.storeKind)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	summaries, err := s.List(ctx)
	if err != nil {
		return err
	}

	if opts.asJSON {
		return json.NewEncoder(os.Stdout).Encode(summaries)
	}

	if len(summaries) == 0 {
		printInfo("No saved runs")
		printNextStep("Save one with", "floorplace place netlist.toml --save")
		return nil
	}

	for _, summary := range summaries {
		printRunSummary(summary)
	}
	return nil
}

// showRun prints one run's details.
func (c *CLI) showRun(ctx context.Context, id string, opts *showOpts) error {
	s, err := newStore(ctx, opts.storeKind)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	run, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	if opts.asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	}

	printKeyValue("ID", run.ID)
	printKeyValue("Created", run.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	printKeyValue("Objective", fmt.Sprintf("%d", run.Objective))
	feasible := "no"
	if run.Feasible {
		feasible = "yes"
	}
	printKeyValue("Feasible", feasible)
	if run.Placement != nil {
		printKeyValue("Modules", fmt.Sprintf("%d", len(run.Placement.Modules)))
		printKeyValue("Nets", fmt.Sprintf("%d", len(run.Placement.Nets)))
		printKeyValue("Region", fmt.Sprintf("%dx%d", run.Placement.Region.Width, run.Placement.Region.Height))
	}
	printKeyValue("Iterations", fmt.Sprintf("%d (max %d, stagnation %d)",
		len(run.Trace), run.Options.MaxIterations, run.Options.MaxStagnation))

	if opts.trace {
		printNewline()
		for _, it := range run.Trace {
			marker := " "
			if it.Feasible {
				marker = "*"
			}
			printDetail("%s iter %-4d objective %-6d best %d", marker, it.Index, it.Objective, it.Best)
		}
	}

	printNewline()
	printNextStep("Re-render it with", "floorplace render "+run.ID)
	return nil
}

// removeRun deletes a run from the store.
func (c *CLI) removeRun(ctx context.Context, id string, opts *showOpts) error {
	s, err := newStore(ctx, opts.storeKind)
	if err != nil {
		return err
	}
	defer s.Close(ctx)

	if err := s.Delete(ctx, id); err != nil {
		return err
	}
	printSuccess("Deleted run %s", id)
	return nil
}

// printRunSummary prints one listing line.
func printRunSummary(s store.Summary) {
	status := StyleWarning.Render("overlap")
	if s.Feasible {
		status = StyleSuccess.Render("feasible")
	}
	fmt.Printf("%s  %s  f=%s  %s  %s\n",
		StyleHighlight.Render(s.ID),
		StyleDim.Render(s.CreatedAt.Format("2006-01-02 15:04")),
		StyleNumber.Render(fmt.Sprintf("%d", s.Objective)),
		status,
		StyleDim.Render(fmt.Sprintf("%d modules", s.Modules)))
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/user/twinsim/internal/match"
	"github.com/user/twinsim/internal/normalize"
	"github.com/user/twinsim/internal/poller"
	"github.com/user/twinsim/internal/score"
	"github.com/user/twinsim/internal/types"
	"github.com/user/twinsim/pkg/twin"
	"github.com/user/twinsim/pkg/twin/rest"
)

func init() {
	rootCmd.AddCommand(simCmd)
	simCmd.AddCommand(simRunCmd, simListCmd, simShowCmd, simDeleteCmd)

	simRunCmd.Flags().Bool("watch", false, "poll the simulation until it finishes")
	simRunCmd.Flags().StringP("output", "o", "table", "output format when watching: table, json or yaml")
	simShowCmd.Flags().Bool("watch", false, "poll the simulation until it finishes")
	simShowCmd.Flags().StringP("output", "o", "table", "output format: table, json or yaml")
}

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Run and inspect compatibility simulations",
}

var simRunCmd = &cobra.Command{
	Use:   "run <profile1_id> <profile2_id>",
	Short: "Simulate a week between two profiles",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := match.Validate(args[0], args[1]); err != nil {
			return err
		}
		client := newClient()
		ctx := cmd.Context()

		// Resolve both profiles up front so a typo fails before a
		// simulation is queued.
		var p1, p2 *twin.Profile
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			p1, err = client.GetProfile(gctx, args[0])
			return err
		})
		g.Go(func() (err error) {
			p2, err = client.GetProfile(gctx, args[1])
			return err
		})
		if err := g.Wait(); err != nil {
			return fmt.Errorf("get profile: %w", err)
		}

		created, err := match.Run(ctx, client, args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Simulating %s & %s: %s (%s)\n", p1.Name, p2.Name, created.SimulationID, created.Status)

		watch, _ := cmd.Flags().GetBool("watch")
		if !watch {
			return nil
		}
		format, _ := cmd.Flags().GetString("output")
		return watchSimulation(ctx, client, created.SimulationID, format)
	},
}

var simListCmd = &cobra.Command{
	Use:   "list",
	Short: "List simulations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().ListSimulations(cmd.Context())
		if err != nil {
			return fmt.Errorf("list simulations: %w", err)
		}
		if len(list) == 0 {
			fmt.Println("No simulations found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tPAIR\tSTATUS\tDAYS\tSCORE\tBAND\tCREATED")
		for _, s := range list {
			c := score.Classify(s.CompatibilityScore)
			scoreText := "-"
			if s.CompatibilityScore != nil {
				scoreText = fmt.Sprintf("%.0f", *s.CompatibilityScore)
			}
			fmt.Fprintf(w, "%s\t%s & %s\t%s\t%d\t%s\t%s\t%s\n",
				s.SimulationID,
				s.Profile1,
				s.Profile2,
				s.Status,
				s.CompletedDays,
				scoreText,
				c.Band,
				s.CreatedAt,
			)
		}
		return w.Flush()
	},
}

var simShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a simulation's exchanges and fondness timeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := newClient()
		format, _ := cmd.Flags().GetString("output")

		watch, _ := cmd.Flags().GetBool("watch")
		if watch {
			return watchSimulation(cmd.Context(), client, args[0], format)
		}

		raw, err := client.GetSimulation(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get simulation: %w", err)
		}
		return showSimulation(normalize.Simulation(raw), format)
	},
}

var simDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a simulation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().DeleteSimulation(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("delete simulation: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Simulation %s deleted.\n", args[0])
		return nil
	},
}

func showSimulation(sim types.Simulation, format string) error {
	if format == "" || format == "table" {
		return renderSimulation(os.Stdout, sim)
	}
	return writeStructured(os.Stdout, format, newSimulationView(sim))
}

// watchSimulation polls until the simulation reaches a terminal status or the
// user interrupts, printing progress on stderr, then shows the last record.
func watchSimulation(ctx context.Context, client *rest.Client, id, format string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctl := poller.New(client, id,
		poller.WithInterval(loadConfig().PollInterval()),
		poller.WithOnUpdate(func(sim types.Simulation) {
			fmt.Fprintln(os.Stderr, mutedStyle.Render(
				fmt.Sprintf("%s: %s, %d days completed", id, sim.Status, sim.CompletedDays)))
		}),
	)
	if err := ctl.Start(ctx); err != nil {
		return fmt.Errorf("failed to load simulation: %w", err)
	}
	defer ctl.Stop()

	<-ctl.Done()

	sim, ok := ctl.Current()
	if !ok {
		return fmt.Errorf("failed to load simulation %s", id)
	}
	if !sim.Status.Terminal() {
		// Interrupted mid-run: show the freshest record, not the last tick's.
		rctx, cancel := context.WithTimeout(context.Background(), loadConfig().Timeout())
		defer cancel()
		if latest, err := ctl.Refresh(rctx); err != nil {
			slog.Warn("final refresh failed", "simulation_id", id, "error", err)
		} else {
			sim = latest
		}
	}
	return showSimulation(sim, format)
}

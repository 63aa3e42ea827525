package commands

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/curricula-dev/curricula/pkg/config"
	"github.com/curricula-dev/curricula/pkg/core"
	"github.com/curricula-dev/curricula/pkg/difficulty"
	"github.com/curricula-dev/curricula/pkg/store"
)

type scenarioStats struct {
	count      int
	totalSteps int
	minScore   float64
	maxScore   float64
	sumScore   float64
}

func NewInspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <corpus.parquet>",
		Short: "Summarize the difficulty profile of a trajectory corpus",
		Long: `Load a parquet trajectory corpus and print per-scenario statistics:
trajectory counts, horizons, and the whole-trajectory difficulty range under
the default calibration. A corpus whose difficulty never reaches the
schedule's ceiling will starve the saturated phase; this shows that before a
run does.`,
		Example: `  curricula-cli inspect corpus/train.parquet`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			trajs, err := store.LoadParquet(ctx, args[0])
			if err != nil {
				return err
			}

			est := difficulty.New(config.GetDefaultConfig().Difficulty)
			stats := map[core.ScenarioType]*scenarioStats{}

			for _, traj := range trajs {
				score, err := est.Score(ctx, traj, 0, traj.Horizon(), traj.AgentIDs())
				if err != nil {
					return fmt.Errorf("scoring trajectory %s: %w", traj.ID, err)
				}

				st := stats[traj.Scenario]
				if st == nil {
					st = &scenarioStats{minScore: 1, maxScore: 0}
					stats[traj.Scenario] = st
				}
				st.count++
				st.totalSteps += traj.Horizon()
				st.sumScore += score.Value
				if score.Value < st.minScore {
					st.minScore = score.Value
				}
				if score.Value > st.maxScore {
					st.maxScore = score.Value
				}
			}

			scenarios := make([]string, 0, len(stats))
			for s := range stats {
				scenarios = append(scenarios, string(s))
			}
			sort.Strings(scenarios)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d trajectories\n\n", len(trajs))
			fmt.Fprintf(out, "%-20s %8s %12s %24s\n", "scenario", "count", "avg steps", "difficulty (min/avg/max)")
			for _, s := range scenarios {
				st := stats[core.ScenarioType(s)]
				fmt.Fprintf(out, "%-20s %8d %12.1f     %.3f / %.3f / %.3f\n",
					s, st.count,
					float64(st.totalSteps)/float64(st.count),
					st.minScore, st.sumScore/float64(st.count), st.maxScore)
			}
			return nil
		},
	}
}

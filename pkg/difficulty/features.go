package difficulty

import (
	"math"

	"github.com/curricula-dev/curricula/pkg/core"
)

// burstWindow is the sliding sub-window, in timesteps, used to measure peak
// swap concentration for time-varying schedules.
const burstWindow = 10

// relevantSwaps filters the window's swap events to those touching at least
// one selected agent.
func relevantSwaps(traj *core.Trajectory, start, end int, agents []int) []core.SwapEvent {
	selected := make(map[int]bool, len(agents))
	for _, id := range agents {
		selected[id] = true
	}
	var out []core.SwapEvent
	for _, sw := range traj.SwapsIn(start, end) {
		if selected[sw.A] || selected[sw.B] {
			out = append(out, sw)
		}
	}
	return out
}

// swapDensity is swaps per timestep among the selected agents, saturating at
// SwapDensityScale.
func (e *Estimator) swapDensity(traj *core.Trajectory, start, end int, agents []int) float64 {
	count := len(relevantSwaps(traj, start, end, agents))
	density := float64(count) / float64(end-start)
	return clip01(density / e.cal.SwapDensityScale)
}

// swapBurstiness is the peak swap concentration over any burstWindow-step
// sub-window. A schedule that packs its swaps together scores higher than one
// that spreads the same count evenly.
func (e *Estimator) swapBurstiness(traj *core.Trajectory, start, end int, agents []int) float64 {
	swaps := relevantSwaps(traj, start, end, agents)
	if len(swaps) == 0 {
		return 0
	}

	peak := 0
	for _, anchor := range swaps {
		count := 0
		for _, sw := range swaps {
			if sw.Step >= anchor.Step && sw.Step < anchor.Step+burstWindow {
				count++
			}
		}
		if count > peak {
			peak = count
		}
	}

	// A lone swap is not a burst; saturate when a sub-window fills up.
	return clip01(float64(peak-1) / float64(burstWindow-1))
}

// scheduleVariance is the variance of the relevant swap steps, in timesteps
// squared, saturating at ScheduleVarianceScale. Fewer than two swaps give
// zero.
func (e *Estimator) scheduleVariance(traj *core.Trajectory, start, end int, agents []int) float64 {
	swaps := relevantSwaps(traj, start, end, agents)
	if len(swaps) < 2 {
		return 0
	}

	var mean float64
	for _, sw := range swaps {
		mean += float64(sw.Step)
	}
	mean /= float64(len(swaps))

	var variance float64
	for _, sw := range swaps {
		d := float64(sw.Step) - mean
		variance += d * d
	}
	variance /= float64(len(swaps))

	return clip01(variance / e.cal.ScheduleVarianceScale)
}

// clearance maps the minimum pairwise distance among selected agents over the
// window onto [0, 1]: contact scores 1, separations at or beyond
// ClearanceScale score 0.
func (e *Estimator) clearance(traj *core.Trajectory, start, end int, agents []int) float64 {
	if len(agents) < 2 {
		return 0
	}

	minDist := math.Inf(1)
	for t := start; t < end; t++ {
		st := traj.Steps[t]
		for i := 0; i < len(agents); i++ {
			for j := i + 1; j < len(agents); j++ {
				d := st[agents[i]].Position.Sub(st[agents[j]].Position).Norm()
				if d < minDist {
					minDist = d
				}
			}
		}
	}

	return clip01(1 - minDist/e.cal.ClearanceScale)
}

// alignmentVariance measures how far the selected agents are from moving as
// one. Per timestep it is the circular variance of the unit velocity
// directions (0 when all headings agree, 1 when they cancel out), averaged
// over the window and scaled by AlignmentScale. Agents at rest are skipped.
func (e *Estimator) alignmentVariance(traj *core.Trajectory, start, end int, agents []int) float64 {
	var total float64
	for t := start; t < end; t++ {
		st := traj.Steps[t]
		var sum core.Vec2
		moving := 0
		for _, id := range agents {
			v := st[id].Velocity
			n := v.Norm()
			if n == 0 {
				continue
			}
			sum[0] += v[0] / n
			sum[1] += v[1] / n
			moving++
		}
		if moving == 0 {
			continue
		}
		total += 1 - sum.Norm()/float64(moving)
	}

	avg := total / float64(end-start)
	return clip01(avg / e.cal.AlignmentScale)
}

// densityVariance is the variance of per-agent neighbor counts within
// CohesionRadius, averaged over the window and saturating at DensityScale.
// A crowd with both packed and isolated agents scores high; an evenly spread
// flock scores near zero.
func (e *Estimator) densityVariance(traj *core.Trajectory, start, end int, agents []int) float64 {
	if len(agents) < 2 {
		return 0
	}

	var total float64
	counts := make([]float64, len(agents))
	for t := start; t < end; t++ {
		st := traj.Steps[t]
		for i := range counts {
			counts[i] = 0
		}
		for i := 0; i < len(agents); i++ {
			for j := i + 1; j < len(agents); j++ {
				d := st[agents[i]].Position.Sub(st[agents[j]].Position).Norm()
				if d <= e.cal.CohesionRadius {
					counts[i]++
					counts[j]++
				}
			}
		}

		var mean float64
		for _, c := range counts {
			mean += c
		}
		mean /= float64(len(counts))

		var variance float64
		for _, c := range counts {
			d := c - mean
			variance += d * d
		}
		total += variance / float64(len(counts))
	}

	avg := total / float64(end-start)
	return clip01(avg / e.cal.DensityScale)
}

// fragmentation is the fraction of timesteps at which the proximity graph
// over the selected agents splits into more than one connected component.
// Edges connect agents within CohesionRadius of each other.
func (e *Estimator) fragmentation(traj *core.Trajectory, start, end int, agents []int) float64 {
	if len(agents) < 2 {
		return 0
	}

	split := 0
	parent := make([]int, len(agents))
	for t := start; t < end; t++ {
		st := traj.Steps[t]
		for i := range parent {
			parent[i] = i
		}
		for i := 0; i < len(agents); i++ {
			for j := i + 1; j < len(agents); j++ {
				d := st[agents[i]].Position.Sub(st[agents[j]].Position).Norm()
				if d <= e.cal.CohesionRadius {
					union(parent, i, j)
				}
			}
		}

		components := 0
		for i := range parent {
			if find(parent, i) == i {
				components++
			}
		}
		if components > 1 {
			split++
		}
	}

	return float64(split) / float64(end-start)
}

func find(parent []int, i int) int {
	for parent[i] != i {
		parent[i] = parent[parent[i]]
		i = parent[i]
	}
	return i
}

func union(parent []int, i, j int) {
	ri, rj := find(parent, i), find(parent, j)
	if ri != rj {
		parent[ri] = rj
	}
}

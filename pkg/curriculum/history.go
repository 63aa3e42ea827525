package curriculum

// EpochRecord is one validation-epoch snapshot of the run: where the band
// was, how the policy performed, and which difficulties the sampler actually
// served since the previous epoch.
type EpochRecord struct {
	Step        int       `json:"step"`
	Phase       Phase     `json:"phase"`
	Band        [2]float64 `json:"band"`
	Performance float64   `json:"performance"`

	// LossPerDifficulty is the latest per-difficulty-bin validation loss
	// reported by the training loop, nil when none arrived this epoch.
	LossPerDifficulty []float64 `json:"loss_per_difficulty,omitempty"`

	// DifficultyDistribution is the normalized histogram of fragment
	// difficulties sampled during the epoch. Sums to 1 unless no fragments
	// were observed.
	DifficultyDistribution []float64 `json:"difficulty_distribution"`
}

// recordEpoch appends a record for the epoch ending at the current step and
// resets the epoch accumulators. Callers hold s.mu.
func (s *Scheduler) recordEpoch() {
	var total int
	for _, c := range s.epochCounts {
		total += c
	}
	distr := make([]float64, len(s.epochCounts))
	if total > 0 {
		for i, c := range s.epochCounts {
			distr[i] = float64(c) / float64(total)
		}
	}

	s.history = append(s.history, EpochRecord{
		Step:                   s.step,
		Phase:                  s.phase,
		Band:                   [2]float64{s.band.Lo, s.band.Hi},
		Performance:            s.perf.Value(),
		LossPerDifficulty:      s.lastPerDiff,
		DifficultyDistribution: distr,
	})

	for i := range s.epochCounts {
		s.epochCounts[i] = 0
	}
	s.lastPerDiff = nil
}

// History returns a copy of the validation-epoch records so far.
func (s *Scheduler) History() []EpochRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]EpochRecord, len(s.history))
	copy(out, s.history)
	return out
}

// Package fsrs implements the stateless FSRS (Free Spaced Repetition
// Scheduler) primitives of spec.md §4.G, ported from the `fsrs` Rust crate
// used by original_source/influx_core/src/fsrs_scheduler.rs: 21 weights,
// initial-stability-from-rating, difficulty with mean reversion, the
// power-curve forgetting curve, and the two stability-update formulas (on
// successful vs. failed recall).
package fsrs

import (
	"math"

	"github.com/influx-reader/influx-server/internal/models"
)

// Weights is the 21-parameter FSRS weight vector (w[0..20]).
type Weights [21]float64

// DefaultWeights mirrors the Rust scheduler's with_default_parameters.
func DefaultWeights() Weights {
	return Weights{
		0.212, 1.2931, 2.3065, 8.2956, 6.4133, 0.8334, 3.0194, 0.001, 1.8722, 0.1666,
		0.796, 1.4835, 0.0614, 0.2629, 1.6483, 0.6014, 1.8729, 0.5425, 0.0912, 0.0658,
		0.1542,
	}
}

// decay/factor are fixed by the algorithm's definition, derived so that
// retrievability(t=S, decay) == requestRetention when requestRetention==0.9;
// decay itself is also a parameter to Retrievability for callers that want a
// non-default forgetting curve shape (mirroring the Rust signature).
const defaultDecay = -0.5

func factorFor(decay float64) float64 {
	return math.Pow(0.9, 1/decay) - 1
}

// Scheduler is parameterised by one language's FSRS weights and retention
// target (spec.md §4.G: "parameterised by (weights, desired_retention)").
type Scheduler struct {
	w               Weights
	desiredRetention float64
	maximumInterval  int
}

func NewScheduler(w Weights, desiredRetention float64, maximumInterval int) *Scheduler {
	return &Scheduler{w: w, desiredRetention: desiredRetention, maximumInterval: maximumInterval}
}

// State is one candidate outcome of a review: the resulting memory and the
// interval (in days) until the card is next due at the scheduler's desired
// retention.
type State struct {
	Memory       models.Memory
	IntervalDays float64
}

// NextStates computes the four candidate outcomes (again/hard/good/easy) of
// rating a card right now, optionally from an existing memory state.
type NextStates struct {
	Again, Hard, Good, Easy State
}

func clampDifficulty(d float64) float64 {
	if d < 1 {
		return 1
	}
	if d > 10 {
		return 10
	}
	return d
}

// initialDifficulty computes D0(grade) = w4 - e^(w5*(grade-1)) + 1, clamped.
func (s *Scheduler) initialDifficulty(grade models.Rating) float64 {
	d := s.w[4] - math.Exp(s.w[5]*float64(grade-1)) + 1
	return clampDifficulty(d)
}

// nextDifficulty applies the linear damping term plus mean reversion towards
// the Easy initial difficulty, matching the Rust crate's update rule.
func (s *Scheduler) nextDifficulty(d float64, grade models.Rating) float64 {
	next := d - s.w[6]*(float64(grade)-3)
	target := s.initialDifficulty(models.RatingEasy)
	reverted := s.w[7]*target + (1-s.w[7])*next
	return clampDifficulty(reverted)
}

// Retrievability returns the probability of recall at daysElapsed for a card
// with the given memory state, under decay (spec.md §4.G primitive 3).
func Retrievability(mem models.Memory, daysElapsed, decay float64) float64 {
	if mem.Stability <= 0 {
		return 0
	}
	factor := factorFor(decay)
	return math.Pow(1+factor*daysElapsed/mem.Stability, decay)
}

func (s *Scheduler) retrievability(mem models.Memory, daysElapsed float64) float64 {
	return Retrievability(mem, daysElapsed, defaultDecay)
}

// stabilityAfterRecall applies the successful-recall update (grade is Hard,
// Good, or Easy).
func (s *Scheduler) stabilityAfterRecall(mem models.Memory, r float64, grade models.Rating) float64 {
	hardPenalty := 1.0
	if grade == models.RatingHard {
		hardPenalty = s.w[15]
	}
	easyBonus := 1.0
	if grade == models.RatingEasy {
		easyBonus = s.w[16]
	}
	return mem.Stability * (1 + math.Exp(s.w[8])*
		(11-mem.Difficulty)*
		math.Pow(mem.Stability, -s.w[9])*
		(math.Exp((1-r)*s.w[10])-1)*
		hardPenalty*easyBonus)
}

// stabilityAfterForget applies the forgetting-curve update for an Again
// rating.
func (s *Scheduler) stabilityAfterForget(mem models.Memory, r float64) float64 {
	return s.w[11] *
		math.Pow(mem.Difficulty, -s.w[12]) *
		(math.Pow(mem.Stability+1, s.w[13]) - 1) *
		math.Exp((1-r)*s.w[14])
}

func (s *Scheduler) intervalFor(stability float64) float64 {
	factor := factorFor(defaultDecay)
	interval := stability / factor * (math.Pow(s.desiredRetention, 1/defaultDecay) - 1)
	if interval < 1 {
		interval = 1
	}
	if s.maximumInterval > 0 && interval > float64(s.maximumInterval) {
		interval = float64(s.maximumInterval)
	}
	return interval
}

// NextStates computes the initial branch (currentMemory == nil, using
// w[0..3] as the per-grade initial stabilities) or the standard FSRS update
// branch otherwise.
func (s *Scheduler) NextStates(currentMemory *models.Memory, daysElapsed float64) NextStates {
	if currentMemory == nil {
		return s.initialNextStates()
	}
	return s.updateNextStates(*currentMemory, daysElapsed)
}

func (s *Scheduler) initialNextStates() NextStates {
	build := func(grade models.Rating) State {
		mem := models.Memory{
			Stability:  s.w[grade-1],
			Difficulty: s.initialDifficulty(grade),
		}
		return State{Memory: mem, IntervalDays: s.intervalFor(mem.Stability)}
	}
	return NextStates{
		Again: build(models.RatingAgain),
		Hard:  build(models.RatingHard),
		Good:  build(models.RatingGood),
		Easy:  build(models.RatingEasy),
	}
}

func (s *Scheduler) updateNextStates(mem models.Memory, daysElapsed float64) NextStates {
	r := s.retrievability(mem, daysElapsed)

	build := func(grade models.Rating) State {
		var stability float64
		if grade == models.RatingAgain {
			stability = s.stabilityAfterForget(mem, r)
		} else {
			stability = s.stabilityAfterRecall(mem, r, grade)
		}
		next := models.Memory{
			Stability:  stability,
			Difficulty: s.nextDifficulty(mem.Difficulty, grade),
		}
		return State{Memory: next, IntervalDays: s.intervalFor(next.Stability)}
	}
	return NextStates{
		Again: build(models.RatingAgain),
		Hard:  build(models.RatingHard),
		Good:  build(models.RatingGood),
		Easy:  build(models.RatingEasy),
	}
}

// Review is one step of a replay sequence for MemoryFromReviews.
type Review struct {
	Rating     models.Rating
	DeltaTDays float64
}

// MemoryFromReviews folds reviews (in order, starting from a fresh card)
// into the resulting memory state, used for parameter-change replay
// (spec.md §4.G primitive 2).
func (s *Scheduler) MemoryFromReviews(reviews []Review) models.Memory {
	var mem *models.Memory
	for _, rv := range reviews {
		states := s.NextStates(mem, rv.DeltaTDays)
		chosen := states.forRating(rv.Rating)
		m := chosen.Memory
		mem = &m
	}
	if mem == nil {
		return models.Memory{}
	}
	return *mem
}

func (n NextStates) forRating(r models.Rating) State {
	switch r {
	case models.RatingAgain:
		return n.Again
	case models.RatingHard:
		return n.Hard
	case models.RatingGood:
		return n.Good
	default:
		return n.Easy
	}
}

package tracker

import (
	"fmt"
	"math"
	"time"

	"github.com/joddb/shopfloor/internal/model"
)

// Classification is the efficiency band of a task.
type Classification string

const (
	ClassificationNone       Classification = ""
	ClassificationOnTrack    Classification = "on-track"
	ClassificationCaution    Classification = "caution"
	ClassificationOverBudget Classification = "over-budget"
)

const (
	onTrackThreshold = 90.0
	cautionThreshold = 75.0
)

// NotAvailable is the text used when there is no standard time.
const NotAvailable = "N/A"

// Input are the task fields the tracker reads.
type Input struct {
	Status              model.TaskStatus
	StartTime           *time.Time
	StandardTimeSeconds int
}

// InputFromTask returns the tracker input of a task.
func InputFromTask(t model.Task) Input {
	in := Input{
		Status:              t.Status,
		StandardTimeSeconds: t.StandardTimeSeconds,
	}
	if t.StartTime != nil {
		st := *t.StartTime
		in.StartTime = &st
	}
	return in
}

// Active returns true when the input needs live tracking.
func (i Input) Active() bool {
	return i.Status == model.TaskStatusInProgress && i.StartTime != nil
}

// Equal returns true if both inputs would derive the same values.
func (i Input) Equal(o Input) bool {
	if i.Status != o.Status || i.StandardTimeSeconds != o.StandardTimeSeconds {
		return false
	}
	if i.StartTime == nil || o.StartTime == nil {
		return i.StartTime == nil && o.StartTime == nil
	}
	return i.StartTime.Equal(*o.StartTime)
}

// Snapshot is the derived tracking state at a point in time.
type Snapshot struct {
	Active              bool
	ElapsedSeconds      int64
	StandardTimeSeconds int
	// Efficiency is the rounded percentage, only meaningful when HasEfficiency is set.
	Efficiency      float64
	HasEfficiency   bool
	ProgressPercent float64
	Classification  Classification
}

// Elapsed returns the elapsed time as a duration.
func (s Snapshot) Elapsed() time.Duration { return time.Duration(s.ElapsedSeconds) * time.Second }

// Compute derives the snapshot of an input at now.
func Compute(in Input, now time.Time) Snapshot {
	return compute(in, now, Snapshot{})
}

// compute derives the snapshot of in at now. When efficiency can't be computed
// (zero elapsed) the previous efficiency is kept.
func compute(in Input, now time.Time, prev Snapshot) Snapshot {
	s := Snapshot{StandardTimeSeconds: in.StandardTimeSeconds}
	if !in.Active() {
		return s
	}

	s.Active = true
	s.ElapsedSeconds = ElapsedSeconds(*in.StartTime, now)
	s.ProgressPercent = ProgressPercent(s.ElapsedSeconds, in.StandardTimeSeconds)

	s.Efficiency, s.HasEfficiency = prev.Efficiency, prev.HasEfficiency
	if eff, ok := Efficiency(in.StandardTimeSeconds, s.ElapsedSeconds); ok {
		s.Efficiency, s.HasEfficiency = eff, true
	}
	if s.HasEfficiency {
		s.Classification = Classify(s.Efficiency)
	}

	return s
}

// TaskSnapshot returns the snapshot of a task at now. Tasks already ended report their
// actual time instead of a live one.
func TaskSnapshot(t model.Task, now time.Time) Snapshot {
	s := Compute(InputFromTask(t), now)
	if s.Active || t.ActualTimeSeconds == nil || !t.Finished() {
		return s
	}

	s.ElapsedSeconds = int64(*t.ActualTimeSeconds)
	s.ProgressPercent = ProgressPercent(s.ElapsedSeconds, t.StandardTimeSeconds)
	if eff, ok := Efficiency(t.StandardTimeSeconds, s.ElapsedSeconds); ok {
		s.Efficiency, s.HasEfficiency = eff, true
		s.Classification = Classify(eff)
	}
	return s
}

// ElapsedSeconds returns the whole seconds between start and now, never negative.
func ElapsedSeconds(start, now time.Time) int64 {
	d := now.Sub(start)
	if d <= 0 {
		return 0
	}
	return int64(d / time.Second)
}

// Efficiency returns round(standard / elapsed * 100). The second value is false
// when it can't be computed (no standard time or no elapsed time).
func Efficiency(standardSeconds int, elapsedSeconds int64) (float64, bool) {
	if standardSeconds <= 0 || elapsedSeconds <= 0 {
		return 0, false
	}
	return math.Round(float64(standardSeconds) / float64(elapsedSeconds) * 100), true
}

// ProgressPercent returns the consumed share of the standard time clamped to [0, 100].
func ProgressPercent(elapsedSeconds int64, standardSeconds int) float64 {
	if standardSeconds <= 0 || elapsedSeconds <= 0 {
		return 0
	}
	p := float64(elapsedSeconds) / float64(standardSeconds) * 100
	return math.Min(p, 100)
}

// Classify returns the band of an efficiency percentage, lower bounds are inclusive.
func Classify(efficiency float64) Classification {
	switch {
	case efficiency >= onTrackThreshold:
		return ClassificationOnTrack
	case efficiency >= cautionThreshold:
		return ClassificationCaution
	default:
		return ClassificationOverBudget
	}
}

// FormatClock formats seconds as HH:MM:SS.
func FormatClock(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatCompact formats seconds as XhYm.
func FormatCompact(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dh%dm", seconds/3600, (seconds%3600)/60)
}

// FormatStandardTime formats a standard time budget, N/A when missing.
func FormatStandardTime(standardSeconds int) string {
	if standardSeconds <= 0 {
		return NotAvailable
	}
	return FormatCompact(int64(standardSeconds))
}

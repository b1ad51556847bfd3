package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// infinityValue is how an unbounded end is rendered on the wire.
const infinityValue = "infinity"

// Bound is one side of a Period. An unbounded bound has no Value.
type Bound struct {
	Value     time.Time
	Inclusive bool
	Unbounded bool
}

// InclusiveBound returns a closed bound at t.
func InclusiveBound(t time.Time) Bound {
	return Bound{Value: t, Inclusive: true}
}

// ExclusiveBound returns an open bound at t.
func ExclusiveBound(t time.Time) Bound {
	return Bound{Value: t}
}

// UnboundedEnd returns an end bound that never closes.
func UnboundedEnd() Bound {
	return Bound{Unbounded: true, Inclusive: true}
}

type boundJSON struct {
	Value     any  `json:"value"`
	Inclusive bool `json:"inclusive"`
}

func (b Bound) MarshalJSON() ([]byte, error) {
	if b.Unbounded {
		return json.Marshal(boundJSON{Value: infinityValue, Inclusive: b.Inclusive})
	}
	return json.Marshal(boundJSON{Value: b.Value.UTC().Format(time.RFC3339Nano), Inclusive: b.Inclusive})
}

func (b *Bound) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value     string `json:"value"`
		Inclusive bool   `json:"inclusive"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Value == infinityValue || raw.Value == "" {
		*b = Bound{Unbounded: true, Inclusive: raw.Inclusive}
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw.Value)
	if err != nil {
		return fmt.Errorf("invalid bound value %q: %w", raw.Value, err)
	}
	*b = Bound{Value: t, Inclusive: raw.Inclusive}
	return nil
}

// Period is a time range. Start is always bounded; End may be unbounded.
type Period struct {
	Start Bound `json:"start"`
	End   Bound `json:"end"`
}

// NewOpenPeriod returns [start, infinity].
func NewOpenPeriod(start time.Time) Period {
	return Period{Start: InclusiveBound(start), End: UnboundedEnd()}
}

// NewHalfOpenPeriod returns [start, end).
func NewHalfOpenPeriod(start, end time.Time) Period {
	return Period{Start: InclusiveBound(start), End: ExclusiveBound(end)}
}

// Validate rejects unbounded starts and empty ranges.
func (p Period) Validate() error {
	if p.Start.Unbounded {
		return fmt.Errorf("period start must be bounded")
	}
	if p.End.Unbounded {
		return nil
	}
	if p.End.Value.Before(p.Start.Value) {
		return fmt.Errorf("period end %s is before start %s", p.End.Value, p.Start.Value)
	}
	if p.End.Value.Equal(p.Start.Value) && !(p.Start.Inclusive && p.End.Inclusive) {
		return fmt.Errorf("period is empty")
	}
	return nil
}

// IsOpenEnded reports whether the period has no end.
func (p Period) IsOpenEnded() bool {
	return p.End.Unbounded
}

// startsBefore reports whether a range starting at lower begins before one ending at upper,
// i.e. whether the two can share at least one instant.
func startsBefore(lower, upper Bound) bool {
	if upper.Unbounded {
		return true
	}
	if lower.Value.Before(upper.Value) {
		return true
	}
	return lower.Value.Equal(upper.Value) && lower.Inclusive && upper.Inclusive
}

// Overlaps reports whether the two periods share at least one instant.
func (p Period) Overlaps(o Period) bool {
	return startsBefore(p.Start, o.End) && startsBefore(o.Start, p.End)
}

// Contains reports whether t lies within the period.
func (p Period) Contains(t time.Time) bool {
	return p.Overlaps(Period{Start: InclusiveBound(t), End: InclusiveBound(t)})
}

// OverlapDuration returns how long the period intersects [from, to).
func (p Period) OverlapDuration(from, to time.Time) time.Duration {
	start := p.Start.Value
	if start.Before(from) {
		start = from
	}
	end := to
	if !p.End.Unbounded && p.End.Value.Before(to) {
		end = p.End.Value
	}
	if !end.After(start) {
		return 0
	}
	return end.Sub(start)
}

// PlatformSubscription assigns a plan to a host over a period of time.
type PlatformSubscription struct {
	ID           string     `json:"id"`
	CollectiveID string     `json:"collectiveId"`
	Period       Period     `json:"period"`
	Plan         Plan       `json:"plan"`
	DeletedAt    *time.Time `json:"deletedAt,omitempty"`
	AuditFields
}

// IsActiveAt reports whether the subscription covers t, regardless of deletion.
func (s PlatformSubscription) IsActiveAt(t time.Time) bool {
	return s.Period.Contains(t)
}

package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// Freq is a recurrence frequency as stored and transmitted.
type Freq string

// Supported frequencies. The empty Freq means "no recurrence".
const (
	FreqDaily   Freq = "Daily"
	FreqWeekly  Freq = "Weekly"
	FreqMonthly Freq = "Monthly"
	FreqYearly  Freq = "Yearly"
)

var rruleFreq = map[Freq]rrule.Frequency{
	FreqDaily:   rrule.DAILY,
	FreqWeekly:  rrule.WEEKLY,
	FreqMonthly: rrule.MONTHLY,
	FreqYearly:  rrule.YEARLY,
}

// weekdays is indexed by time.Weekday (0=Sunday).
var weekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

// Valid reports whether f is empty or one of the known frequencies.
func (f Freq) Valid() bool {
	if f == "" {
		return true
	}
	_, ok := rruleFreq[f]
	return ok
}

// Recurrence is a stored repetition rule. It is carried with the event and
// exported as RRULE, but never expanded into occurrences.
type Recurrence struct {
	Freq      Freq       `json:"freq,omitempty"`
	Interval  int        `json:"interval"`
	ByWeekday []int      `json:"byweekday,omitempty"` // 0=Sunday..6=Saturday
	Until     *time.Time `json:"until,omitempty"`
	Count     *int       `json:"count,omitempty"`
}

// Clone returns a deep copy.
func (r Recurrence) Clone() Recurrence {
	out := r
	if r.ByWeekday != nil {
		out.ByWeekday = append([]int(nil), r.ByWeekday...)
	}
	if r.Until != nil {
		u := *r.Until
		out.Until = &u
	}
	if r.Count != nil {
		c := *r.Count
		out.Count = &c
	}
	return out
}

// Normalize applies defaults in place.
func (r *Recurrence) Normalize() {
	if r.Interval == 0 {
		r.Interval = 1
	}
}

// Check validates field ranges without building a rule.
func (r Recurrence) Check() error {
	if !r.Freq.Valid() {
		return fmt.Errorf("unknown freq %q", r.Freq)
	}
	if r.Interval < 1 {
		return errors.New("interval must be a positive integer")
	}
	for _, d := range r.ByWeekday {
		if d < 0 || d > 6 {
			return fmt.Errorf("byweekday %d out of range 0..6", d)
		}
	}
	if r.Count != nil && *r.Count < 1 {
		return errors.New("count must be a positive integer")
	}
	return nil
}

// Option converts the rule into an rrule option anchored at dtstart.
// It returns nil when no frequency is set.
func (r Recurrence) Option(dtstart time.Time) (*rrule.ROption, error) {
	if err := r.Check(); err != nil {
		return nil, err
	}
	if r.Freq == "" {
		return nil, nil
	}
	opt := rrule.ROption{
		Freq:     rruleFreq[r.Freq],
		Dtstart:  dtstart,
		Interval: r.Interval,
	}
	for _, d := range r.ByWeekday {
		opt.Byweekday = append(opt.Byweekday, weekdays[d])
	}
	if r.Until != nil {
		opt.Until = *r.Until
	}
	if r.Count != nil {
		opt.Count = *r.Count
	}
	if _, err := rrule.NewRRule(opt); err != nil {
		return nil, err
	}
	return &opt, nil
}

// RRule renders the RFC 5545 RRULE value (without DTSTART), or "" when unset.
func (r Recurrence) RRule(dtstart time.Time) (string, error) {
	opt, err := r.Option(dtstart)
	if err != nil || opt == nil {
		return "", err
	}
	return opt.RRuleString(), nil
}

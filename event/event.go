package event

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"
)

var (
	ErrStartAfterEnd  = errors.New("event start time is after end time")
	ErrUnsetTime      = errors.New("unset event start or end time")
	ErrNoEventName    = errors.New("no event name")
	ErrUnknownHoliday = errors.New("unknown holiday")
)

// Event represents a time span that carries its own demand effect
type Event struct {
	Name  string
	Start time.Time
	End   time.Time
}

func NewEvent(name string, start, end time.Time) Event {
	return Event{
		Name:  name,
		Start: start,
		End:   end,
	}
}

func (e *Event) Valid() error {
	if e.Start.IsZero() || e.End.IsZero() {
		return ErrUnsetTime
	}
	if e.Start.After(e.End) {
		return ErrStartAfterEnd
	}
	if e.Name == "" {
		return ErrNoEventName
	}
	return nil
}

// Contains reports whether t is within [Start, End)
func (e Event) Contains(t time.Time) bool {
	return (t.After(e.Start) || t.Equal(e.Start)) && t.Before(e.End)
}

// Holiday returns one event per observed occurrence of the holiday between start and end,
// widened by durBefore and durAfter.
func Holiday(hol *cal.Holiday, start, end time.Time, durBefore, durAfter time.Duration) []Event {
	startLoc := start.Location()

	events := []Event{}
	for i := start.Year(); i <= end.Year(); i++ {
		_, observed := hol.Calc(i)
		_, offset := observed.Zone()
		_, startOffset := start.Zone()

		observed = observed.Add(time.Duration(offset) * time.Second).In(startLoc).Add(time.Duration(-startOffset) * time.Second)

		if (observed.After(start) || observed.Equal(start)) && (observed.Before(end) || observed.Equal(end)) {
			events = append(events, Event{
				Name:  strings.ReplaceAll(fmt.Sprintf("%s_%d", hol.Name, i), " ", "_"),
				Start: observed.Add(-durBefore),
				End:   observed.Add(24 * time.Hour).Add(durAfter),
			})
		}
	}
	return events
}

// RegressorName is the covariate column name used for a holiday
func RegressorName(hol *cal.Holiday) string {
	return "holiday_" + strings.ToLower(strings.ReplaceAll(hol.Name, " ", "_"))
}

// Mask returns 1 for every time covered by any of the events and 0 otherwise
func Mask(t []time.Time, events []Event) []float64 {
	mask := make([]float64, len(t))
	for i, tPnt := range t {
		for _, e := range events {
			if e.Contains(tPnt) {
				mask[i] = 1
				break
			}
		}
	}
	return mask
}

// Regressors builds one 0/1 covariate column per holiday for the given dates which may be
// in any order. Holidays never observed in the range still get an all zero column.
func Regressors(t []time.Time, holidays []*cal.Holiday, durBefore, durAfter time.Duration) map[string][]float64 {
	if len(t) == 0 || len(holidays) == 0 {
		return nil
	}
	start := slices.MinFunc(t, func(a, b time.Time) int { return a.Compare(b) })
	end := slices.MaxFunc(t, func(a, b time.Time) int { return a.Compare(b) })

	// include holidays whose window starts before the range
	rangeStart := start.Add(-durAfter - 24*time.Hour)
	rangeEnd := end.Add(durBefore)

	res := make(map[string][]float64, len(holidays))
	for _, hol := range holidays {
		res[RegressorName(hol)] = Mask(t, Holiday(hol, rangeStart, rangeEnd, durBefore, durAfter))
	}
	return res
}

var usHolidays = map[string]*cal.Holiday{
	"new_years_day":    us.NewYear,
	"mlk_day":          us.MlkDay,
	"presidents_day":   us.PresidentsDay,
	"memorial_day":     us.MemorialDay,
	"independence_day": us.IndependenceDay,
	"labor_day":        us.LaborDay,
	"columbus_day":     us.ColumbusDay,
	"veterans_day":     us.VeteransDay,
	"thanksgiving_day": us.ThanksgivingDay,
	"christmas_day":    us.ChristmasDay,
}

// Lookup resolves configured holiday keys such as "christmas_day" into calendar holidays.
// The key "us" expands to every supported US holiday.
func Lookup(names []string) ([]*cal.Holiday, error) {
	var res []*cal.Holiday
	seen := make(map[string]bool)
	add := func(key string) {
		if seen[key] {
			return
		}
		seen[key] = true
		res = append(res, usHolidays[key])
	}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "us" {
			keys := make([]string, 0, len(usHolidays))
			for k := range usHolidays {
				keys = append(keys, k)
			}
			slices.Sort(keys)
			for _, k := range keys {
				add(k)
			}
			continue
		}
		if _, exists := usHolidays[key]; !exists {
			return nil, fmt.Errorf("%q, %w", name, ErrUnknownHoliday)
		}
		add(key)
	}
	return res, nil
}

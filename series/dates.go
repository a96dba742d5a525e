package series

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

const minChunk = 1024

// ParseDates parses raw date strings into UTC calendar days using at most workers goroutines.
// An empty layout uses DefaultDateLayout.
func ParseDates(values []string, layout string, workers int) ([]time.Time, error) {
	if layout == "" {
		layout = DefaultDateLayout
	}
	if workers < 1 {
		workers = 1
	}
	res := make([]time.Time, len(values))

	chunk := (len(values) + workers - 1) / workers
	if chunk < minChunk {
		chunk = minChunk
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for start := 0; start < len(values); start += chunk {
		end := min(start+chunk, len(values))
		g.Go(func() error {
			for i := start; i < end; i++ {
				t, err := parseDate(values[i], layout)
				if err != nil {
					return fmt.Errorf("unable to parse date at row %d, %w", i, err)
				}
				res[i] = t
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return res, nil
}

func parseDate(value, layout string) (time.Time, error) {
	value = strings.TrimSpace(value)
	// numeric date keys can come through spreadsheets as floats
	value = strings.TrimSuffix(value, ".0")
	t, err := time.Parse(layout, value)
	if err != nil {
		return time.Time{}, err
	}
	return ToDay(t), nil
}

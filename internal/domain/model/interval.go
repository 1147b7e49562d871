package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Interval is a bounded range of match minutes. Both ends are inclusive at
// minute granularity; stoppage-time events are recorded at their base minute.
type Interval struct {
	Label string `json:"label"`
	Lo    int    `json:"lo"`
	Hi    int    `json:"hi"`
}

// ParseInterval parses labels such as "31-45" or "31–45".
func ParseInterval(label string) (Interval, error) {
	norm := strings.ReplaceAll(strings.TrimSpace(label), "–", "-")
	parts := strings.Split(norm, "-")
	if len(parts) != 2 {
		return Interval{}, fmt.Errorf("%w: %q", ErrInvalidInterval, label)
	}
	lo, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %q: %v", ErrInvalidInterval, label, err)
	}
	hi, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %q: %v", ErrInvalidInterval, label, err)
	}
	if lo < 0 || hi-lo < 1 {
		return Interval{}, fmt.Errorf("%w: %q: need 0 <= lo < hi", ErrInvalidInterval, label)
	}
	return Interval{Label: fmt.Sprintf("%d-%d", lo, hi), Lo: lo, Hi: hi}, nil
}

// Contains reports whether an event at minute t falls inside the interval.
func (i Interval) Contains(t int) bool {
	return t >= i.Lo && t <= i.Hi
}

func (i Interval) String() string { return i.Label }

// DefaultIntervalLabels is the football catalog used when none is configured.
var DefaultIntervalLabels = []string{"0-15", "16-30", "31-45", "46-60", "61-75", "76-90"} //nolint:gochecknoglobals // read-only default

// IntervalCatalog is the ordered set of intervals the engine knows how to score.
type IntervalCatalog struct {
	ordered []Interval
	byLabel map[string]Interval
}

// NewIntervalCatalog parses labels into a catalog. Duplicate labels are rejected.
func NewIntervalCatalog(labels []string) (*IntervalCatalog, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("%w: empty catalog", ErrInvalidInterval)
	}
	c := &IntervalCatalog{byLabel: make(map[string]Interval, len(labels))}
	for _, l := range labels {
		iv, err := ParseInterval(l)
		if err != nil {
			return nil, err
		}
		if _, dup := c.byLabel[iv.Label]; dup {
			return nil, fmt.Errorf("%w: duplicate %q", ErrInvalidInterval, iv.Label)
		}
		c.byLabel[iv.Label] = iv
		c.ordered = append(c.ordered, iv)
	}
	return c, nil
}

// DefaultIntervalCatalog returns the built-in football catalog.
func DefaultIntervalCatalog() *IntervalCatalog {
	c, err := NewIntervalCatalog(DefaultIntervalLabels)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup resolves a label (either dash form) to a known interval.
func (c *IntervalCatalog) Lookup(label string) (Interval, error) {
	iv, err := ParseInterval(label)
	if err != nil {
		return Interval{}, err
	}
	known, ok := c.byLabel[iv.Label]
	if !ok {
		return Interval{}, fmt.Errorf("%w: %q", ErrUnknownInterval, label)
	}
	return known, nil
}

// All returns the intervals in catalog order.
func (c *IntervalCatalog) All() []Interval {
	out := make([]Interval, len(c.ordered))
	copy(out, c.ordered)
	return out
}

// Labels returns the catalog labels in order.
func (c *IntervalCatalog) Labels() []string {
	out := make([]string, len(c.ordered))
	for i, iv := range c.ordered {
		out[i] = iv.Label
	}
	return out
}

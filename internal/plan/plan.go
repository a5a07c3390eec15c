package plan

import (
	"fmt"
	"math"
	"strings"

	apperrors "github.com/agbru/fibfill/internal/errors"
)

// MaxSplit bounds the number of destinations in one run.
const MaxSplit = 1_000_000

// Settings are the raw sizing settings as given on the command line.
type Settings struct {
	File      string
	Size      string
	Unit      string
	Split     int
	SplitSize string // empty when not given
	SplitUnit string
	Stop      bool
}

// Destination is one output and its planned budget.
type Destination struct {
	Index  int
	Name   string
	Budget int64
}

// Plan is the validated list of destinations.
type Plan struct {
	// Total is the total size in bytes.
	Total int64
	// SplitSize is the per-split size after the stop cap, or Total when
	// there is a single destination.
	SplitSize int64
	// Stop bounds the sum of all destinations by Total.
	Stop bool
	// Destinations are in generation order.
	Destinations []Destination
}

// Build validates s and computes the plan.
func Build(s Settings) (*Plan, error) {
	if s.Split < 1 {
		return nil, apperrors.NewConfigError("split count must be at least 1, got %d", s.Split)
	}
	if s.Split > MaxSplit {
		return nil, apperrors.NewConfigError("split count must be at most %d, got %d", MaxSplit, s.Split)
	}
	if s.Split > 1 && strings.TrimSpace(s.SplitSize) == "" {
		return nil, apperrors.NewConfigError("--splitsize is required when --split > 1")
	}
	if s.File == "" {
		return nil, apperrors.NewConfigError("file name cannot be empty")
	}

	total, err := ParseSize(s.Size, s.Unit, "size")
	if err != nil {
		return nil, err
	}
	splitSize := total
	if strings.TrimSpace(s.SplitSize) != "" {
		if splitSize, err = ParseSize(s.SplitSize, s.SplitUnit, "splitsize"); err != nil {
			return nil, err
		}
	}
	if s.Stop && s.Split > 1 {
		splitSize = min(splitSize, total/int64(s.Split))
	}

	p := &Plan{Total: total, Stop: s.Stop, SplitSize: total}
	if s.Split > 1 {
		p.SplitSize = splitSize
	}
	p.Destinations = make([]Destination, s.Split)
	for i := range p.Destinations {
		p.Destinations[i] = Destination{
			Index:  i,
			Name:   DestinationName(s.File, i, s.Split),
			Budget: p.SplitSize,
		}
	}
	return p, nil
}

// DestinationName returns the name of destination i out of count.
func DestinationName(file string, i, count int) string {
	if count > 1 {
		return fmt.Sprintf("%s-%d.txt", file, i)
	}
	return file
}

// PlannedBytes is the sum of the planned budgets, bounded by Total under
// stop semantics.
func (p *Plan) PlannedBytes() int64 {
	var sum int64
	for _, d := range p.Destinations {
		if sum > math.MaxInt64-d.Budget {
			return math.MaxInt64
		}
		sum += d.Budget
		if p.Stop && sum >= p.Total {
			return p.Total
		}
	}
	return sum
}

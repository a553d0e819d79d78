package service

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"smartmeter/backend/services/billing-service/internal/models"
)

// slabBound is a parsed slab. Widths are derived from cumulative upper
// bounds: "0-100" then "101-300" yields the first 100 units at one rate and
// the next 200 at another. The open-ended final slab absorbs the remainder.
type slabBound struct {
	label string
	upper decimal.Decimal
	rate  decimal.Decimal
	open  bool
}

// parseSlabs validates the schedule invariants: ascending, contiguous,
// non-overlapping, at most one trailing open-ended slab, non-negative rates.
func parseSlabs(slabs []models.Slab) ([]slabBound, error) {
	if len(slabs) == 0 {
		return nil, errors.New("tariff has no slabs")
	}

	bounds := make([]slabBound, 0, len(slabs))
	nextLower := int64(0)
	for i, slab := range slabs {
		label := strings.TrimSpace(slab.Range)
		if slab.Rate < 0 {
			return nil, fmt.Errorf("slab %q: negative rate", label)
		}
		rate := decimal.NewFromFloat(slab.Rate)

		if strings.HasSuffix(label, "+") {
			if i != len(slabs)-1 {
				return nil, fmt.Errorf("slab %q: open-ended slab must be last", label)
			}
			lower, err := strconv.ParseInt(strings.TrimSuffix(label, "+"), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("slab %q: invalid lower bound", label)
			}
			if lower != nextLower {
				return nil, fmt.Errorf("slab %q: expected lower bound %d", label, nextLower)
			}
			bounds = append(bounds, slabBound{label: label, rate: rate, open: true})
			continue
		}

		parts := strings.SplitN(label, "-", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("slab %q: expected \"lower-upper\" or \"lower+\"", label)
		}
		lower, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("slab %q: invalid lower bound", label)
		}
		upper, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("slab %q: invalid upper bound", label)
		}
		if lower != nextLower {
			return nil, fmt.Errorf("slab %q: expected lower bound %d", label, nextLower)
		}
		if upper <= lower {
			return nil, fmt.Errorf("slab %q: upper bound must exceed lower bound", label)
		}

		bounds = append(bounds, slabBound{label: label, upper: decimal.NewFromInt(upper), rate: rate})
		nextLower = upper + 1
	}
	return bounds, nil
}

// ValidateSlabs checks a slab schedule without computing anything.
func ValidateSlabs(slabs []models.Slab) error {
	_, err := parseSlabs(slabs)
	return err
}

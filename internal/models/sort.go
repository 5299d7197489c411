package models

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Sort keys accepted by SortFields.
const (
	SortByName     = "name"
	SortByLocation = "location"
	SortByCapacity = "capacity"
	SortByPrice    = "price"
	SortByStatus   = "status"
)

// SortFields orders fields in place by key. Text columns compare case-insensitively.
func SortFields(fields []Field, key string, descending bool) error {
	var compare func(a, b Field) int

	switch key {
	case SortByName:
		compare = func(a, b Field) int { return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	case SortByLocation:
		compare = func(a, b Field) int { return cmp.Compare(strings.ToLower(a.Location), strings.ToLower(b.Location)) }
	case SortByCapacity:
		compare = func(a, b Field) int { return cmp.Compare(a.Capacity, b.Capacity) }
	case SortByPrice:
		compare = func(a, b Field) int { return cmp.Compare(a.PricePerHour, b.PricePerHour) }
	case SortByStatus:
		compare = func(a, b Field) int { return cmp.Compare(a.Status, b.Status) }
	default:
		return fmt.Errorf("unknown sort key %q", key)
	}

	if descending {
		slices.SortStableFunc(fields, func(a, b Field) int { return compare(b, a) })
		return nil
	}
	slices.SortStableFunc(fields, compare)
	return nil
}

package enums

import (
	"fmt"
	"slices"
	"strings"
)

func parseEnum[T ~string](kind string, valid []T, value string) (T, error) {
	normalized := T(strings.ToLower(strings.TrimSpace(value)))
	if slices.Contains(valid, normalized) {
		return normalized, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, value)
}

package tabular

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"loadwatch/domain/core"
)

// coerceMetric converts a raw metric cell into a Value. An empty cell is
// an absent measurement; anything else must parse as a finite float.
func coerceMetric(cell string) (core.Value, error) {
	s := strings.TrimSpace(cell)
	if s == "" {
		return core.Missing(), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return core.Missing(), fmt.Errorf("%w: %q", core.ErrNonNumeric, cell)
	}
	v := core.Some(f)
	if !v.Valid() {
		return core.Missing(), fmt.Errorf("%w: non-finite %q", core.ErrNonNumeric, cell)
	}
	return v, nil
}

// isKeyError reports whether a parse failure hit the identifying keys,
// which aborts the batch instead of skipping the row.
func isKeyError(err error) bool {
	return errors.Is(err, core.ErrInvalidKey)
}

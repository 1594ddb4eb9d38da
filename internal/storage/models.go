package storage

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// errPortfolioMissing is returned by every read and mutation when the
// singleton portfolio row has not been seeded.
var errPortfolioMissing = fmt.Errorf("portfolio data %w; run `folio seed` first", ErrNotFound)

// Stored list columns. Stacks are comma-joined; highlights use "||" because
// they commonly contain commas.
const (
	stackSep     = ","
	highlightSep = "||"
)

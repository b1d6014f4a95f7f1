package commands

import "rental-engine/internal/pkg/errs"

func isNotFound(err error) bool {
	return errs.Is(err, errs.ErrNotFound)
}

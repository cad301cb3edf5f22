package listener

import (
	"errors"
	"fmt"
)

var (
	errNoExtractableAmount = errors.New("configured patterns extracted no amount")
	errUnknownCurrency     = errors.New("currency could not be resolved")
	errNonPositiveAmount   = errors.New("extracted amount is not positive")
	errNoDefaultAccount    = errors.New("app has no default account configured")
)

// foreignCurrencyError marks a match in a currency other than the
// local one; auto-add only books local-currency transactions.
type foreignCurrencyError struct {
	Code string
}

func (e *foreignCurrencyError) Error() string {
	return fmt.Sprintf("matched foreign currency %s", e.Code)
}

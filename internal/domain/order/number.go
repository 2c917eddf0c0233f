package order

import (
	"fmt"
	"strconv"

	"github.com/go-faster/errors"
)

// numberWidth is the zero-padded width of external order numbers.
const numberWidth = 6

// NextNumber derives the next sequential order number from the last one.
// Numbers compare as integers, not lexically: "000099" precedes "000100".
// An empty last number means no orders exist yet and yields "000001".
func NextNumber(last string) (string, error) {
	if last == "" {
		return formatNumber(1), nil
	}
	n, err := strconv.ParseInt(last, 10, 64)
	if err != nil {
		return "", errors.Wrapf(err, "parse order number %q", last)
	}
	return formatNumber(n + 1), nil
}

func formatNumber(n int64) string {
	return fmt.Sprintf("%0*d", numberWidth, n)
}

package strategy

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/premium-forecast/pkg/constants"
	"github.com/iwvelando/premium-forecast/pkg/mathutil"
)

var (
	// ErrInvalidParameter is returned for out-of-domain inputs such as a
	// non-positive price, capital or IV level.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDegenerateDivision is returned when a ratio would divide by zero.
	ErrDegenerateDivision = errors.New("degenerate division")
)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}

// ratio divides num by den, naming the quantity in the error when den is zero.
func ratio(num, den float64, what string) (float64, error) {
	q, ok := mathutil.SafeDivide(num, den)
	if !ok {
		return 0, fmt.Errorf("%w: %s (%.4f / %.4f)", ErrDegenerateDivision, what, num, den)
	}
	return q, nil
}

// checkHorizon rejects month counts outside [1, constants.MaxProjectionMonths].
func checkHorizon(months int, what string) error {
	if months < 1 || months > constants.MaxProjectionMonths {
		return invalidf("%s must be between 1 and %d, got %d", what, constants.MaxProjectionMonths, months)
	}
	return nil
}

// contractCount floors capital/cost into a whole number of contracts.
func contractCount(capital, cost float64, what string) (int, error) {
	n := math.Floor(capital / cost)
	if math.IsNaN(n) || math.Abs(n) > constants.MaxContracts {
		return 0, invalidf("%s contract count out of range (%.4g / %.4g)", what, capital, cost)
	}
	return int(n), nil
}

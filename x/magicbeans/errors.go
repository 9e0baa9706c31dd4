package magicbeans

import "github.com/iov-one/weave/errors"

var (
	// ErrInvalidDeposit is returned when a deposit is not a positive amount
	// of the configured currency.
	ErrInvalidDeposit = errors.Register(1500, "invalid deposit")

	// ErrNothingForSale is returned when a sale is requested but no beans
	// have grown yet.
	ErrNothingForSale = errors.Register(1501, "no beans for sale")

	// ErrLiquidityExhausted is returned when the pool cannot pay the whole
	// grown amount.
	ErrLiquidityExhausted = errors.Register(1502, "money ran out")

	// ErrNothingToReplant is returned when a replant is requested but no
	// beans have grown yet.
	ErrNothingToReplant = errors.Register(1503, "no beans to replant")
)

package magicbeans

import (
	"math/big"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
)

// GrownBeans returns the part of the planted beans that has grown since the
// planting time. Growth is linear and reaches the whole planted amount after
// the maturity period. It never grows beyond that.
//
// All computations are done on fractional units and the result is rounded
// down.
func GrownBeans(beans coin.Coin, plantedAt, now weave.UnixTime, maturity weave.UnixDuration) (coin.Coin, error) {
	zero := coin.Coin{Ticker: beans.Ticker}
	if maturity <= 0 {
		return zero, errors.Wrap(errors.ErrState, "maturity period must be greater than zero")
	}
	if !beans.IsPositive() || now <= plantedAt {
		return zero, nil
	}

	elapsed := new(big.Int).Sub(big.NewInt(int64(now)), big.NewInt(int64(plantedAt)))
	period := big.NewInt(int64(maturity))
	if elapsed.Cmp(period) >= 0 {
		return beans, nil
	}

	units := asUnits(beans)
	units.Mul(units, elapsed)
	units.Quo(units, period)
	return fromUnits(units, beans.Ticker)
}

// SplitFee divides a deposit into the owner fee and the net amount that is
// credited to the planter. The fee is rounded down, so that
//   fee + net == amount
func SplitFee(amount coin.Coin, rate Frac) (fee, net coin.Coin, err error) {
	if err := rate.Validate(); err != nil {
		return fee, net, errors.Wrap(err, "fee rate")
	}
	if !amount.IsPositive() {
		return fee, net, errors.Wrap(ErrInvalidDeposit, "amount must be greater than zero")
	}

	units := asUnits(amount)
	units.Mul(units, big.NewInt(rate.Numerator))
	units.Quo(units, big.NewInt(rate.Denominator))
	fee, err = fromUnits(units, amount.Ticker)
	if err != nil {
		return fee, net, errors.Wrap(err, "fee")
	}
	net, err = amount.Subtract(fee)
	if err != nil {
		return fee, net, errors.Wrap(err, "net amount")
	}
	return fee, net, nil
}

// asUnits returns the value of a coin expressed in the smallest fractional
// units.
func asUnits(c coin.Coin) *big.Int {
	n := big.NewInt(c.Whole)
	n.Mul(n, big.NewInt(coin.FracUnit))
	return n.Add(n, big.NewInt(c.Fractional))
}

// fromUnits converts fractional units back into a coin. It fails if the
// value cannot be represented by a coin or if it is negative.
func fromUnits(units *big.Int, ticker string) (coin.Coin, error) {
	if units.Sign() < 0 {
		return coin.Coin{}, errors.Wrap(errors.ErrOverflow, "negative value")
	}
	whole, frac := new(big.Int).QuoRem(units, big.NewInt(coin.FracUnit), new(big.Int))
	if !whole.IsInt64() || whole.Int64() > coin.MaxInt {
		return coin.Coin{}, errors.Wrap(errors.ErrOverflow, "value out of range")
	}
	return coin.NewCoin(whole.Int64(), frac.Int64(), ticker), nil
}

// addBeans returns the sum of both values. Coin addition is range checked
// and fails with ErrOverflow.
func addBeans(a, b coin.Coin) (coin.Coin, error) {
	sum, err := a.Add(b)
	if err != nil {
		return coin.Coin{}, errors.Wrapf(err, "%s + %s", a, b)
	}
	return sum, nil
}

// subBeans subtracts b from a. Unlike coin subtraction, it does not allow the
// result to be negative.
func subBeans(a, b coin.Coin) (coin.Coin, error) {
	if !a.IsGTE(b) {
		return coin.Coin{}, errors.Wrapf(errors.ErrOverflow, "underflow: %s - %s", a, b)
	}
	return a.Subtract(b)
}

package magicbeans

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
)

func init() {
	migration.MustRegister(1, &Position{}, migration.NoModification)
	migration.MustRegister(1, &Pool{}, migration.NoModification)
}

var _ orm.Model = (*Position)(nil)

func (m *Position) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Planter", m.Planter.Validate())
	errs = errors.AppendField(errs, "Beans", validateBeans(m.Beans))
	errs = errors.AppendField(errs, "PlantedAt", m.PlantedAt.Validate())
	return errs
}

// Empty returns true if this position holds no beans. An empty position is
// equivalent to a position that was never created.
func (m *Position) Empty() bool {
	return m == nil || m.Beans.IsZero()
}

// NewPositionBucket returns a bucket that stores positions under the planter
// address.
func NewPositionBucket() orm.ModelBucket {
	b := orm.NewModelBucket("mbposition", &Position{})
	return migration.NewModelBucket("magicbeans", b)
}

var _ orm.Model = (*Pool)(nil)

func (m *Pool) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Liquidity", validateBeans(m.Liquidity))
	errs = errors.AppendField(errs, "CollectedFees", validateBeans(m.CollectedFees))
	if m.Liquidity.Ticker != m.CollectedFees.Ticker && !m.CollectedFees.IsZero() {
		errs = errors.AppendField(errs, "CollectedFees",
			errors.Wrap(errors.ErrCurrency, "must be the same currency as liquidity"))
	}
	return errs
}

// NewPoolBucket returns a bucket that stores the pool state. There is only
// one pool and it is always stored under the poolKey.
func NewPoolBucket() orm.ModelBucket {
	b := orm.NewModelBucket("mbpool", &Pool{})
	return migration.NewModelBucket("magicbeans", b)
}

var poolKey = []byte("pool")

// PoolAddress returns the address of the wallet holding all planted funds.
func PoolAddress() weave.Address {
	return weave.NewCondition("magicbeans", "pool", []byte("liquidity")).Address()
}

// Validate returns an error if this Frac instance is not a valid rate between
// zero and one.
func (f Frac) Validate() error {
	var errs error
	if f.Denominator <= 0 {
		errs = errors.AppendField(errs, "Denominator", errors.Wrap(errors.ErrState, "must be greater than zero"))
	}
	if f.Numerator < 0 {
		errs = errors.AppendField(errs, "Numerator", errors.Wrap(errors.ErrState, "must not be negative"))
	} else if f.Denominator > 0 && f.Numerator > f.Denominator {
		errs = errors.AppendField(errs, "Numerator", errors.Wrap(errors.ErrState, "must not be greater than denominator"))
	}
	return errs
}

// validateBeans returns an error if given value is not a valid, non negative
// coin.
func validateBeans(c coin.Coin) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !c.IsNonNegative() {
		return errors.Wrap(errors.ErrAmount, "must not be negative")
	}
	return nil
}

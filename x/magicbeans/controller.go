package magicbeans

import (
	"time"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/orm"
	"github.com/iov-one/weave/x/cash"
)

// Controller is the bean planting engine. All state changing methods either
// succeed or return an error before writing anything to the store.
type Controller interface {
	// Plant moves given amount from the planter wallet to the pool and
	// credits beans for it.
	Plant(db weave.KVStore, planter weave.Address, amount coin.Coin, now time.Time) (*Position, error)

	// ReceiveDeposit credits beans for funds that were already transferred
	// to the pool wallet. Accounting is the same as for Plant.
	ReceiveDeposit(db weave.KVStore, planter weave.Address, amount coin.Coin, now time.Time) (*Position, error)

	// Replant adds all grown beans to the planted balance and restarts the
	// growth.
	Replant(db weave.KVStore, planter weave.Address, now time.Time) (*Position, error)

	// SellHarvest pays all grown beans out of the pool to the seller
	// wallet. Sold beans are removed from the planted balance. The amount
	// paid is returned.
	SellHarvest(db weave.KVStore, seller weave.Address, now time.Time) (coin.Coin, error)

	// HowManyGrown returns the amount of beans that can be sold or
	// replanted at given time.
	HowManyGrown(db weave.KVStore, owner weave.Address, now time.Time) (coin.Coin, error)

	// BeansOf returns the planted balance.
	BeansOf(db weave.KVStore, owner weave.Address) (coin.Coin, error)

	// Pool returns the current pool state.
	Pool(db weave.KVStore) (*Pool, error)
}

// BeanController is the default Controller implementation. All funds are
// moved using the cash controller it was created with.
type BeanController struct {
	cash      cash.Controller
	positions orm.ModelBucket
	pools     orm.ModelBucket
}

var _ Controller = (*BeanController)(nil)

// NewController returns a controller that is using given cash controller to
// transfer funds.
func NewController(ctrl cash.Controller) *BeanController {
	return &BeanController{
		cash:      ctrl,
		positions: NewPositionBucket(),
		pools:     NewPoolBucket(),
	}
}

func (c *BeanController) Plant(db weave.KVStore, planter weave.Address, amount coin.Coin, now time.Time) (*Position, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	pos, pool, err := c.credit(db, conf, planter, amount, now)
	if err != nil {
		return nil, err
	}
	if err := cash.MoveCoins(db, c.cash, planter, PoolAddress(), []*coin.Coin{&amount}); err != nil {
		return nil, errors.Wrap(err, "deposit funds")
	}
	if err := c.save(db, pos, pool); err != nil {
		return nil, err
	}
	return pos, nil
}

func (c *BeanController) ReceiveDeposit(db weave.KVStore, planter weave.Address, amount coin.Coin, now time.Time) (*Position, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	pos, pool, err := c.credit(db, conf, planter, amount, now)
	if err != nil {
		return nil, err
	}
	if err := c.save(db, pos, pool); err != nil {
		return nil, err
	}
	return pos, nil
}

// credit returns the planter position and the pool state after depositing
// given amount. Nothing is written to the store.
func (c *BeanController) credit(db weave.KVStore, conf Configuration, planter weave.Address, amount coin.Coin, now time.Time) (*Position, *Pool, error) {
	if amount.Ticker != conf.Ticker {
		return nil, nil, errors.Wrapf(ErrInvalidDeposit, "only %s can be planted, got %s", conf.Ticker, amount.Ticker)
	}
	fee, net, err := SplitFee(amount, conf.FeeRate)
	if err != nil {
		return nil, nil, err
	}
	pos, err := c.position(db, conf, planter)
	if err != nil {
		return nil, nil, err
	}
	pool, err := c.pool(db, conf)
	if err != nil {
		return nil, nil, err
	}

	beans, err := addBeans(pos.Beans, net)
	if err != nil {
		return nil, nil, errors.Wrap(err, "beans")
	}
	liquidity, err := addBeans(pool.Liquidity, amount)
	if err != nil {
		return nil, nil, errors.Wrap(err, "liquidity")
	}
	fees, err := addBeans(pool.CollectedFees, fee)
	if err != nil {
		return nil, nil, errors.Wrap(err, "collected fees")
	}

	pos.Beans = beans
	pos.PlantedAt = weave.AsUnixTime(now)
	pool.Liquidity = liquidity
	pool.CollectedFees = fees
	return pos, pool, nil
}

func (c *BeanController) Replant(db weave.KVStore, planter weave.Address, now time.Time) (*Position, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	pos, err := c.position(db, conf, planter)
	if err != nil {
		return nil, err
	}
	grown, err := GrownBeans(pos.Beans, pos.PlantedAt, weave.AsUnixTime(now), conf.MaturityPeriod)
	if err != nil {
		return nil, errors.Wrap(err, "grown beans")
	}
	if !grown.IsPositive() {
		return nil, errors.Wrap(ErrNothingToReplant, "nothing has grown yet")
	}
	beans, err := addBeans(pos.Beans, grown)
	if err != nil {
		return nil, errors.Wrap(err, "beans")
	}

	pos.Beans = beans
	pos.PlantedAt = weave.AsUnixTime(now)
	if _, err := c.positions.Put(db, planter, pos); err != nil {
		return nil, errors.Wrap(err, "store position")
	}
	return pos, nil
}

func (c *BeanController) SellHarvest(db weave.KVStore, seller weave.Address, now time.Time) (coin.Coin, error) {
	conf, err := loadConf(db)
	if err != nil {
		return coin.Coin{}, err
	}
	pos, err := c.position(db, conf, seller)
	if err != nil {
		return coin.Coin{}, err
	}
	grown, err := GrownBeans(pos.Beans, pos.PlantedAt, weave.AsUnixTime(now), conf.MaturityPeriod)
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "grown beans")
	}
	if !grown.IsPositive() {
		return coin.Coin{}, errors.Wrap(ErrNothingForSale, "nothing has grown yet")
	}
	pool, err := c.pool(db, conf)
	if err != nil {
		return coin.Coin{}, err
	}
	if !pool.Liquidity.IsGTE(grown) {
		return coin.Coin{}, errors.Wrapf(ErrLiquidityExhausted, "pool holds %s, harvest is worth %s", pool.Liquidity, grown)
	}
	beans, err := subBeans(pos.Beans, grown)
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "beans")
	}
	liquidity, err := subBeans(pool.Liquidity, grown)
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "liquidity")
	}

	pos.Beans = beans
	// Growth restarts with every sale. Selling again at the same moment
	// finds nothing grown.
	pos.PlantedAt = weave.AsUnixTime(now)
	if pos.Empty() {
		pos.PlantedAt = 0
	}
	pool.Liquidity = liquidity
	if err := cash.MoveCoins(db, c.cash, PoolAddress(), seller, []*coin.Coin{&grown}); err != nil {
		return coin.Coin{}, errors.Wrap(err, "pay harvest")
	}
	if err := c.save(db, pos, pool); err != nil {
		return coin.Coin{}, err
	}
	return grown, nil
}

func (c *BeanController) HowManyGrown(db weave.KVStore, owner weave.Address, now time.Time) (coin.Coin, error) {
	conf, err := loadConf(db)
	if err != nil {
		return coin.Coin{}, err
	}
	pos, err := c.position(db, conf, owner)
	if err != nil {
		return coin.Coin{}, err
	}
	grown, err := GrownBeans(pos.Beans, pos.PlantedAt, weave.AsUnixTime(now), conf.MaturityPeriod)
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "grown beans")
	}
	return grown, nil
}

func (c *BeanController) BeansOf(db weave.KVStore, owner weave.Address) (coin.Coin, error) {
	conf, err := loadConf(db)
	if err != nil {
		return coin.Coin{}, err
	}
	pos, err := c.position(db, conf, owner)
	if err != nil {
		return coin.Coin{}, err
	}
	return pos.Beans, nil
}

func (c *BeanController) Pool(db weave.KVStore) (*Pool, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	return c.pool(db, conf)
}

// position returns the position of given address. A position that does not
// exist is returned as an empty one.
func (c *BeanController) position(db weave.KVStore, conf Configuration, owner weave.Address) (*Position, error) {
	var pos Position
	switch err := c.positions.One(db, owner, &pos); {
	case err == nil:
		return &pos, nil
	case errors.ErrNotFound.Is(err):
		return &Position{
			Metadata: &weave.Metadata{Schema: 1},
			Planter:  owner,
			Beans:    coin.Coin{Ticker: conf.Ticker},
		}, nil
	default:
		return nil, errors.Wrap(err, "load position")
	}
}

// pool returns the pool state. A pool that was not stored yet is returned as
// an empty one.
func (c *BeanController) pool(db weave.KVStore, conf Configuration) (*Pool, error) {
	var pool Pool
	switch err := c.pools.One(db, poolKey, &pool); {
	case err == nil:
		return &pool, nil
	case errors.ErrNotFound.Is(err):
		return emptyPool(conf.Ticker), nil
	default:
		return nil, errors.Wrap(err, "load pool")
	}
}

func (c *BeanController) save(db weave.KVStore, pos *Position, pool *Pool) error {
	if _, err := c.positions.Put(db, pos.Planter, pos); err != nil {
		return errors.Wrap(err, "store position")
	}
	if _, err := c.pools.Put(db, poolKey, pool); err != nil {
		return errors.Wrap(err, "store pool")
	}
	return nil
}

func emptyPool(ticker string) *Pool {
	return &Pool{
		Metadata:      &weave.Metadata{Schema: 1},
		Liquidity:     coin.Coin{Ticker: ticker},
		CollectedFees: coin.Coin{Ticker: ticker},
	}
}

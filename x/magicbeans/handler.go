package magicbeans

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/x"
	"github.com/iov-one/weave/x/cash"
)

// RegisterQuery exposes positions under "/positions" and the bean pool
// under "/beanpool".
func RegisterQuery(qr weave.QueryRouter) {
	NewPositionBucket().Register("positions", qr)
	NewPoolBucket().Register("beanpool", qr)
}

// RegisterRoutes registers handlers for all bean operations. There is no
// message to update the configuration, the owner set at genesis is final.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, cashctrl cash.Controller) {
	r = migration.SchemaMigratingRegistry("magicbeans", r)

	ctrl := NewController(cashctrl)

	r.Handle(&PlantMsg{}, &plantHandler{
		auth:     auth,
		ctrl:     ctrl,
		cashctrl: cashctrl,
	})
	r.Handle(&ReplantMsg{}, &replantHandler{
		auth: auth,
		ctrl: ctrl,
	})
	r.Handle(&SellHarvestMsg{}, &sellHarvestHandler{
		auth: auth,
		ctrl: ctrl,
	})
}

type plantHandler struct {
	auth     x.Authenticator
	ctrl     Controller
	cashctrl cash.Controller
}

func (h *plantHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: 0}, nil
}

func (h *plantHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	pos, err := h.ctrl.Plant(db, msg.Planter, msg.Amount, now)
	if err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Debug("beans planted",
		"planter", msg.Planter,
		"amount", msg.Amount.String(),
		"beans", pos.Beans.String())

	raw, err := pos.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal position")
	}
	return &weave.DeliverResult{Data: raw}, nil
}

func (h *plantHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*PlantMsg, error) {
	var msg PlantMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Planter) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "planter signature is required")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	if msg.Amount.Ticker != conf.Ticker {
		return nil, errors.Wrapf(ErrInvalidDeposit, "only %s can be planted", conf.Ticker)
	}
	if err := hasFunds(db, h.cashctrl, msg.Planter, msg.Amount); err != nil {
		return nil, err
	}
	return &msg, nil
}

// hasFunds returns no error if given wallet contains at least given amount of
// funds.
func hasFunds(db weave.KVStore, ctrl cash.Controller, wallet weave.Address, funds coin.Coin) error {
	coins, err := ctrl.Balance(db, wallet)
	if err != nil {
		return errors.Wrap(err, "planter balance")
	}
	for _, c := range coins {
		if c.Ticker != funds.Ticker {
			continue
		}
		if c.Compare(funds) >= 0 {
			return nil
		}
	}
	return errors.Wrap(errors.ErrAmount, "not enough funds on planter account")
}

type replantHandler struct {
	auth x.Authenticator
	ctrl Controller
}

func (h *replantHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: 0}, nil
}

func (h *replantHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	pos, err := h.ctrl.Replant(db, msg.Planter, now)
	if err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Debug("beans replanted",
		"planter", msg.Planter,
		"beans", pos.Beans.String())

	raw, err := pos.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal position")
	}
	return &weave.DeliverResult{Data: raw}, nil
}

func (h *replantHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*ReplantMsg, error) {
	var msg ReplantMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Planter) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "planter signature is required")
	}
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	grown, err := h.ctrl.HowManyGrown(db, msg.Planter, now)
	if err != nil {
		return nil, err
	}
	if !grown.IsPositive() {
		return nil, errors.Wrap(ErrNothingToReplant, "nothing has grown yet")
	}
	return &msg, nil
}

type sellHarvestHandler struct {
	auth x.Authenticator
	ctrl Controller
}

func (h *sellHarvestHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: 0}, nil
}

func (h *sellHarvestHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	paid, err := h.ctrl.SellHarvest(db, msg.Seller, now)
	if err != nil {
		return nil, err
	}
	weave.GetLogger(ctx).Debug("harvest sold",
		"seller", msg.Seller,
		"paid", paid.String())

	raw, err := paid.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal payout")
	}
	return &weave.DeliverResult{Data: raw}, nil
}

func (h *sellHarvestHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*SellHarvestMsg, error) {
	var msg SellHarvestMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Seller) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "seller signature is required")
	}
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "block time")
	}
	grown, err := h.ctrl.HowManyGrown(db, msg.Seller, now)
	if err != nil {
		return nil, err
	}
	if !grown.IsPositive() {
		return nil, errors.Wrap(ErrNothingForSale, "nothing has grown yet")
	}
	pool, err := h.ctrl.Pool(db)
	if err != nil {
		return nil, err
	}
	if !pool.Liquidity.IsGTE(grown) {
		return nil, errors.Wrapf(ErrLiquidityExhausted, "pool holds %s, harvest is worth %s", pool.Liquidity, grown)
	}
	return &msg, nil
}

package magicbeans

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/x/cash"
)

// DepositDecorator plants funds that were sent to the pool wallet with a
// plain cash transfer. The sender is credited with beans the same way as if
// a PlantMsg was sent.
//
// This decorator must be placed after the savepoint, so that a failed
// deposit reverts the transfer as well.
type DepositDecorator struct {
	ctrl Controller
}

var _ weave.Decorator = DepositDecorator{}

// NewDepositDecorator returns a decorator that is using given controller to
// credit received deposits.
func NewDepositDecorator(ctrl Controller) DepositDecorator {
	return DepositDecorator{ctrl: ctrl}
}

func (d DepositDecorator) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Checker) (*weave.CheckResult, error) {
	res, err := next.Check(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := d.receive(ctx, db, tx); err != nil {
		return nil, err
	}
	return res, nil
}

func (d DepositDecorator) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx, next weave.Deliverer) (*weave.DeliverResult, error) {
	res, err := next.Deliver(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := d.receive(ctx, db, tx); err != nil {
		return nil, err
	}
	return res, nil
}

// receive credits the sender if given transaction is a transfer to the pool
// wallet. Any other transaction is ignored.
func (d DepositDecorator) receive(ctx weave.Context, db weave.KVStore, tx weave.Tx) error {
	msg, err := tx.GetMsg()
	if err != nil {
		return errors.Wrap(err, "cannot get message")
	}
	send, ok := msg.(*cash.SendMsg)
	if !ok || !send.Destination.Equals(PoolAddress()) {
		return nil
	}
	if send.Amount == nil {
		return errors.Wrap(ErrInvalidDeposit, "no amount")
	}
	now, err := weave.BlockTime(ctx)
	if err != nil {
		return errors.Wrap(err, "block time")
	}
	pos, err := d.ctrl.ReceiveDeposit(db, send.Source, *send.Amount, now)
	if err != nil {
		return errors.Wrap(err, "plant received funds")
	}
	weave.GetLogger(ctx).Debug("deposit received",
		"planter", send.Source,
		"amount", send.Amount.String(),
		"beans", pos.Beans.String())
	return nil
}

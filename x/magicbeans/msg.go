package magicbeans

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &PlantMsg{}, migration.NoModification)
	migration.MustRegister(1, &ReplantMsg{}, migration.NoModification)
	migration.MustRegister(1, &SellHarvestMsg{}, migration.NoModification)
}

var _ weave.Msg = (*PlantMsg)(nil)

func (PlantMsg) Path() string {
	return "magicbeans/plant"
}

func (m *PlantMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Planter", m.Planter.Validate())
	if err := m.Amount.Validate(); err != nil {
		errs = errors.AppendField(errs, "Amount", err)
	} else if !m.Amount.IsPositive() {
		errs = errors.AppendField(errs, "Amount", errors.Wrap(ErrInvalidDeposit, "must be greater than zero"))
	}
	return errs
}

var _ weave.Msg = (*ReplantMsg)(nil)

func (ReplantMsg) Path() string {
	return "magicbeans/replant"
}

func (m *ReplantMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Planter", m.Planter.Validate())
	return errs
}

var _ weave.Msg = (*SellHarvestMsg)(nil)

func (SellHarvestMsg) Path() string {
	return "magicbeans/sell_harvest"
}

func (m *SellHarvestMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Seller", m.Seller.Validate())
	return errs
}

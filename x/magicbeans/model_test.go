package magicbeans

import (
	"testing"

	weave "github.com/iov-one/weave"
	coin "github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/weavetest/assert"
)

func TestPositionValidate(t *testing.T) {
	cases := map[string]struct {
		m    Position
		errs map[string]*errors.Error
	}{
		"all good": {
			m: Position{
				Metadata:  &weave.Metadata{Schema: 1},
				Planter:   weavetest.NewCondition().Address(),
				Beans:     coin.NewCoin(95, 0, "IOV"),
				PlantedAt: 1572247483,
			},
			errs: map[string]*errors.Error{
				"Metadata":  nil,
				"Planter":   nil,
				"Beans":     nil,
				"PlantedAt": nil,
			},
		},
		"empty position is valid": {
			m: Position{
				Metadata: &weave.Metadata{Schema: 1},
				Planter:  weavetest.NewCondition().Address(),
				Beans:    coin.NewCoin(0, 0, "IOV"),
			},
			errs: map[string]*errors.Error{
				"Beans":     nil,
				"PlantedAt": nil,
			},
		},
		"certain fields are required": {
			m: Position{},
			errs: map[string]*errors.Error{
				"Metadata": errors.ErrMetadata,
				"Planter":  errors.ErrEmpty,
				"Beans":    errors.ErrCurrency,
			},
		},
		"negative beans": {
			m: Position{
				Metadata: &weave.Metadata{Schema: 1},
				Planter:  weavetest.NewCondition().Address(),
				Beans:    coin.NewCoin(-4, 0, "IOV"),
			},
			errs: map[string]*errors.Error{
				"Beans": errors.ErrAmount,
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.m.Validate()
			for field, wantErr := range tc.errs {
				assert.FieldError(t, err, field, wantErr)
			}
		})
	}
}

func TestPoolValidate(t *testing.T) {
	cases := map[string]struct {
		m    Pool
		errs map[string]*errors.Error
	}{
		"all good": {
			m: Pool{
				Metadata:      &weave.Metadata{Schema: 1},
				Liquidity:     coin.NewCoin(100, 0, "IOV"),
				CollectedFees: coin.NewCoin(5, 0, "IOV"),
			},
			errs: map[string]*errors.Error{
				"Metadata":      nil,
				"Liquidity":     nil,
				"CollectedFees": nil,
			},
		},
		"fees must be in the pool currency": {
			m: Pool{
				Metadata:      &weave.Metadata{Schema: 1},
				Liquidity:     coin.NewCoin(100, 0, "IOV"),
				CollectedFees: coin.NewCoin(5, 0, "BTC"),
			},
			errs: map[string]*errors.Error{
				"Liquidity":     nil,
				"CollectedFees": errors.ErrCurrency,
			},
		},
		"negative liquidity": {
			m: Pool{
				Metadata:      &weave.Metadata{Schema: 1},
				Liquidity:     coin.NewCoin(-1, 0, "IOV"),
				CollectedFees: coin.NewCoin(0, 0, "IOV"),
			},
			errs: map[string]*errors.Error{
				"Liquidity":     errors.ErrAmount,
				"CollectedFees": nil,
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.m.Validate()
			for field, wantErr := range tc.errs {
				assert.FieldError(t, err, field, wantErr)
			}
		})
	}
}

func TestPositionEmpty(t *testing.T) {
	var nilPos *Position
	assert.Equal(t, true, nilPos.Empty())
	assert.Equal(t, true, (&Position{Beans: coin.NewCoin(0, 0, "IOV")}).Empty())
	assert.Equal(t, false, (&Position{Beans: coin.NewCoin(0, 1, "IOV")}).Empty())
}

func TestPoolAddressIsStable(t *testing.T) {
	assert.Equal(t, PoolAddress(), PoolAddress())
	if err := PoolAddress().Validate(); err != nil {
		t.Fatalf("invalid pool address: %s", err)
	}
}

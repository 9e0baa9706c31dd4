package magicbeans

import (
	"context"
	"testing"

	weave "github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	coin "github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/x/cash"
)

func TestUseCases(t *testing.T) {
	type Request struct {
		Now         weave.UnixTime
		Conditions  []weave.Condition
		Tx          weave.Tx
		BlockHeight int64
		WantErr     *errors.Error
	}

	type AccountBalance struct {
		Wallet weave.Address
		Amount coin.Coin
	}

	var (
		ownerCond = weavetest.NewCondition()
		aliceCond = weavetest.NewCondition()
		bobCond   = weavetest.NewCondition()

		now = weave.UnixTime(1572247483)
	)

	plant := func(who weave.Condition, amount coin.Coin) weave.Tx {
		return &weavetest.Tx{
			Msg: &PlantMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Planter:  who.Address(),
				Amount:   amount,
			},
		}
	}
	replant := func(who weave.Condition) weave.Tx {
		return &weavetest.Tx{
			Msg: &ReplantMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Planter:  who.Address(),
			},
		}
	}
	sell := func(who weave.Condition) weave.Tx {
		return &weavetest.Tx{
			Msg: &SellHarvestMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Seller:   who.Address(),
			},
		}
	}

	cases := map[string]struct {
		Requests  []Request
		Funds     []AccountBalance
		AfterTest func(t *testing.T, db weave.KVStore)
	}{
		"planting credits beans reduced by the fee": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(150, 0, "IOV")},
			},
			Requests: []Request{
				{
					Now:         now,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          plant(aliceCond, coin.NewCoin(100, 0, "IOV")),
					BlockHeight: 100,
					WantErr:     nil,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, aliceCond.Address(), coin.NewCoin(50, 0, "IOV"))
				assertFunds(t, db, PoolAddress(), coin.NewCoin(100, 0, "IOV"))
				assertPosition(t, db, aliceCond.Address(), coin.NewCoin(95, 0, "IOV"), now)
				assertPool(t, db, coin.NewCoin(100, 0, "IOV"), coin.NewCoin(5, 0, "IOV"))
			},
		},
		"planting again accumulates beans and restarts growth": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(300, 0, "IOV")},
			},
			Requests: []Request{
				{
					Now:         now,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          plant(aliceCond, coin.NewCoin(100, 0, "IOV")),
					BlockHeight: 100,
				},
				{
					Now:         now + 30,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          plant(aliceCond, coin.NewCoin(20, 0, "IOV")),
					BlockHeight: 101,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, aliceCond.Address(), coin.NewCoin(180, 0, "IOV"))
				assertPosition(t, db, aliceCond.Address(), coin.NewCoin(114, 0, "IOV"), now+30)
				assertPool(t, db, coin.NewCoin(120, 0, "IOV"), coin.NewCoin(6, 0, "IOV"))
			},
		},
		"fee is rounded down": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(1, 0, "IOV")},
			},
			Requests: []Request{
				{
					Now:         now,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          plant(aliceCond, coin.NewCoin(0, 19, "IOV")),
					BlockHeight: 100,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertPosition(t, db, aliceCond.Address(), coin.NewCoin(0, 19, "IOV"), now)
				assertPool(t, db, coin.NewCoin(0, 19, "IOV"), coin.NewCoin(0, 0, "IOV"))
			},
		},
		"zero deposit is rejected": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(100, 0, "IOV")},
			},
			Requests: []Request{
				{
					Now:         now,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          plant(aliceCond, coin.NewCoin(0, 0, "IOV")),
					BlockHeight: 100,
					WantErr:     ErrInvalidDeposit,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, aliceCond.Address(), coin.NewCoin(100, 0, "IOV"))
				assertNoPosition(t, db, aliceCond.Address())
			},
		},
		"only the native currency can be planted": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(100, 0, "BTC")},
			},
			Requests: []Request{
				{
					Now:         now,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          plant(aliceCond, coin.NewCoin(10, 0, "BTC")),
					BlockHeight: 100,
					WantErr:     ErrInvalidDeposit,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, aliceCond.Address(), coin.NewCoin(100, 0, "BTC"))
			},
		},
		"planting more than owned is rejected": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(50, 0, "IOV")},
			},
			Requests: []Request{
				{
					Now:         now,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          plant(aliceCond, coin.NewCoin(100, 0, "IOV")),
					BlockHeight: 100,
					WantErr:     errors.ErrAmount,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, aliceCond.Address(), coin.NewCoin(50, 0, "IOV"))
				assertNoPosition(t, db, aliceCond.Address())
			},
		},
		"planter signature is required": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(100, 0, "IOV")},
			},
			Requests: []Request{
				{
					Now:         now,
					Conditions:  []weave.Condition{bobCond},
					Tx:          plant(aliceCond, coin.NewCoin(10, 0, "IOV")),
					BlockHeight: 100,
					WantErr:     errors.ErrUnauthorized,
				},
				{
					Now:         now + 1000,
					Conditions:  []weave.Condition{bobCond},
					Tx:          replant(aliceCond),
					BlockHeight: 101,
					WantErr:     errors.ErrUnauthorized,
				},
				{
					Now:         now + 1000,
					Conditions:  []weave.Condition{bobCond},
					Tx:          sell(aliceCond),
					BlockHeight: 102,
					WantErr:     errors.ErrUnauthorized,
				},
			},
		},
		"replant after maturity doubles the beans": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(150, 0, "IOV")},
			},
			Requests: []Request{
				{
					Now:         now,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          plant(aliceCond, coin.NewCoin(100, 0, "IOV")),
					BlockHeight: 100,
				},
				{
					Now:         now + 200,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          replant(aliceCond),
					BlockHeight: 101,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertPosition(t, db, aliceCond.Address(), coin.NewCoin(190, 0, "IOV"), now+200)
				// Replanting does not move any funds.
				assertFunds(t, db, aliceCond.Address(), coin.NewCoin(50, 0, "IOV"))
				assertPool(t, db, coin.NewCoin(100, 0, "IOV"), coin.NewCoin(5, 0, "IOV"))
			},
		},
		"replant before anything has grown": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(150, 0, "IOV")},
			},
			Requests: []Request{
				{
					Now:         now,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          plant(aliceCond, coin.NewCoin(100, 0, "IOV")),
					BlockHeight: 100,
				},
				{
					Now:         now,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          replant(aliceCond),
					BlockHeight: 100,
					WantErr:     ErrNothingToReplant,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertPosition(t, db, aliceCond.Address(), coin.NewCoin(95, 0, "IOV"), now)
			},
		},
		"replant without planting": {
			Requests: []Request{
				{
					Now:         now,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          replant(aliceCond),
					BlockHeight: 100,
					WantErr:     ErrNothingToReplant,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertNoPosition(t, db, aliceCond.Address())
			},
		},
		"selling partially grown beans restarts the growth": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(150, 0, "IOV")},
			},
			Requests: []Request{
				{
					Now:         now,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          plant(aliceCond, coin.NewCoin(100, 0, "IOV")),
					BlockHeight: 100,
				},
				{
					Now:         now + 50,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          sell(aliceCond),
					BlockHeight: 101,
				},
				// Nothing has grown since the previous sale.
				{
					Now:         now + 50,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          sell(aliceCond),
					BlockHeight: 101,
					WantErr:     ErrNothingForSale,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				// Half of 95 beans has grown and was sold.
				assertFunds(t, db, aliceCond.Address(), coin.NewCoin(97, 500000000, "IOV"))
				assertFunds(t, db, PoolAddress(), coin.NewCoin(52, 500000000, "IOV"))
				assertPosition(t, db, aliceCond.Address(), coin.NewCoin(47, 500000000, "IOV"), now+50)
				assertPool(t, db, coin.NewCoin(52, 500000000, "IOV"), coin.NewCoin(5, 0, "IOV"))
			},
		},
		"selling everything empties the position": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(150, 0, "IOV")},
			},
			Requests: []Request{
				{
					Now:         now,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          plant(aliceCond, coin.NewCoin(100, 0, "IOV")),
					BlockHeight: 100,
				},
				{
					Now:         now + 100,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          sell(aliceCond),
					BlockHeight: 101,
				},
				{
					Now:         now + 1000,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          sell(aliceCond),
					BlockHeight: 102,
					WantErr:     ErrNothingForSale,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, aliceCond.Address(), coin.NewCoin(145, 0, "IOV"))
				assertFunds(t, db, PoolAddress(), coin.NewCoin(5, 0, "IOV"))
				assertPosition(t, db, aliceCond.Address(), coin.NewCoin(0, 0, "IOV"), 0)
			},
		},
		"nothing to sell right after planting": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(150, 0, "IOV")},
			},
			Requests: []Request{
				{
					Now:         now,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          plant(aliceCond, coin.NewCoin(100, 0, "IOV")),
					BlockHeight: 100,
				},
				{
					Now:         now,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          sell(aliceCond),
					BlockHeight: 100,
					WantErr:     ErrNothingForSale,
				},
			},
		},
		"money runs out": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(150, 0, "IOV")},
				{Wallet: bobCond.Address(), Amount: coin.NewCoin(150, 0, "IOV")},
			},
			Requests: []Request{
				{
					Now:         now,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          plant(aliceCond, coin.NewCoin(100, 0, "IOV")),
					BlockHeight: 100,
				},
				{
					Now:         now,
					Conditions:  []weave.Condition{bobCond},
					Tx:          plant(bobCond, coin.NewCoin(100, 0, "IOV")),
					BlockHeight: 100,
				},
				{
					Now:         now + 100,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          replant(aliceCond),
					BlockHeight: 101,
				},
				{
					Now:         now + 100,
					Conditions:  []weave.Condition{bobCond},
					Tx:          replant(bobCond),
					BlockHeight: 101,
				},
				{
					Now:         now + 200,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          sell(aliceCond),
					BlockHeight: 102,
				},
				{
					Now:         now + 200,
					Conditions:  []weave.Condition{bobCond},
					Tx:          sell(bobCond),
					BlockHeight: 102,
					WantErr:     ErrLiquidityExhausted,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, aliceCond.Address(), coin.NewCoin(240, 0, "IOV"))
				assertFunds(t, db, bobCond.Address(), coin.NewCoin(50, 0, "IOV"))
				assertFunds(t, db, PoolAddress(), coin.NewCoin(10, 0, "IOV"))
				assertPosition(t, db, aliceCond.Address(), coin.NewCoin(0, 0, "IOV"), 0)
				// Failed sale does not modify the position.
				assertPosition(t, db, bobCond.Address(), coin.NewCoin(190, 0, "IOV"), now+100)
				assertPool(t, db, coin.NewCoin(10, 0, "IOV"), coin.NewCoin(10, 0, "IOV"))
			},
		},
		"transfer to the pool plants beans": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(150, 0, "IOV")},
			},
			Requests: []Request{
				{
					Now:        now,
					Conditions: []weave.Condition{aliceCond},
					Tx: &weavetest.Tx{
						Msg: &cash.SendMsg{
							Metadata:    &weave.Metadata{Schema: 1},
							Source:      aliceCond.Address(),
							Destination: PoolAddress(),
							Amount:      coin.NewCoinp(100, 0, "IOV"),
						},
					},
					BlockHeight: 100,
				},
				{
					Now:         now + 200,
					Conditions:  []weave.Condition{aliceCond},
					Tx:          replant(aliceCond),
					BlockHeight: 101,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, aliceCond.Address(), coin.NewCoin(50, 0, "IOV"))
				assertFunds(t, db, PoolAddress(), coin.NewCoin(100, 0, "IOV"))
				assertPosition(t, db, aliceCond.Address(), coin.NewCoin(190, 0, "IOV"), now+200)
				assertPool(t, db, coin.NewCoin(100, 0, "IOV"), coin.NewCoin(5, 0, "IOV"))
			},
		},
		"transfer of a foreign currency to the pool is rejected": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(150, 0, "BTC")},
			},
			Requests: []Request{
				{
					Now:        now,
					Conditions: []weave.Condition{aliceCond},
					Tx: &weavetest.Tx{
						Msg: &cash.SendMsg{
							Metadata:    &weave.Metadata{Schema: 1},
							Source:      aliceCond.Address(),
							Destination: PoolAddress(),
							Amount:      coin.NewCoinp(100, 0, "BTC"),
						},
					},
					BlockHeight: 100,
					WantErr:     ErrInvalidDeposit,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertNoPosition(t, db, aliceCond.Address())
			},
		},
		"transfer to another wallet is not a deposit": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(150, 0, "IOV")},
			},
			Requests: []Request{
				{
					Now:        now,
					Conditions: []weave.Condition{aliceCond},
					Tx: &weavetest.Tx{
						Msg: &cash.SendMsg{
							Metadata:    &weave.Metadata{Schema: 1},
							Source:      aliceCond.Address(),
							Destination: bobCond.Address(),
							Amount:      coin.NewCoinp(100, 0, "IOV"),
						},
					},
					BlockHeight: 100,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, bobCond.Address(), coin.NewCoin(100, 0, "IOV"))
				assertNoPosition(t, db, aliceCond.Address())
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			migration.MustInitPkg(db, "magicbeans", "cash")

			rt := app.NewRouter()
			auth := &weavetest.CtxAuth{Key: "auth"}
			ctrl := cash.NewController(cash.NewBucket())
			RegisterRoutes(rt, auth, ctrl)

			// Required for transferring tokens request.
			cash.RegisterRoutes(rt, auth, ctrl)

			handler := app.ChainDecorators(
				NewDepositDecorator(NewController(ctrl)),
			).WithHandler(rt)

			for _, b := range tc.Funds {
				if err := ctrl.CoinMint(db, b.Wallet, b.Amount); err != nil {
					t.Fatalf("cannot mint coins for %q: %s", b.Wallet, err)
				}
			}

			config := Configuration{
				Metadata:       &weave.Metadata{Schema: 1},
				Owner:          ownerCond.Address(),
				FeeRate:        Frac{Numerator: 5, Denominator: 100},
				MaturityPeriod: 100,
				Ticker:         "IOV",
			}
			if err := gconf.Save(db, "magicbeans", &config); err != nil {
				t.Fatalf("cannot save configuration: %s", err)
			}

			for i, req := range tc.Requests {
				ctx := weave.WithHeight(context.Background(), req.BlockHeight)
				ctx = weave.WithChainID(ctx, "testchain-123")
				ctx = auth.SetConditions(ctx, req.Conditions...)
				ctx = weave.WithBlockTime(ctx, req.Now.Time())

				cache := db.CacheWrap()
				if _, err := handler.Check(ctx, cache, req.Tx); !req.WantErr.Is(err) {
					t.Fatalf("unexpected %d check error: want %q, got %+v", i, req.WantErr, err)
				}
				cache.Discard()

				// Deliver on a cache so that a failed request leaves
				// no partial state behind.
				cache = db.CacheWrap()
				if _, err := handler.Deliver(ctx, cache, req.Tx); !req.WantErr.Is(err) {
					t.Fatalf("unexpected %d deliver error: want %q, got %+v", i, req.WantErr, err)
				} else if err == nil {
					if err := cache.Write(); err != nil {
						t.Fatalf("cannot write cache: %s", err)
					}
				} else {
					cache.Discard()
				}
			}

			if tc.AfterTest != nil {
				tc.AfterTest(t, db)
			}
		})
	}
}

func assertFunds(t testing.TB, db weave.KVStore, wallet weave.Address, funds coin.Coin) {
	t.Helper()

	ctrl := cash.NewController(cash.NewBucket())
	coins, err := ctrl.Balance(db, wallet)
	if err != nil {
		t.Fatalf("balance: %s", err)
	}
	if len(coins) != 1 {
		t.Fatalf("want %q funds, found %d coins: %q", funds, len(coins), coins)
	}
	if !coins[0].Equals(funds) {
		t.Fatalf("unexpected funds found: %q", coins[0])
	}
}

func assertPosition(t testing.TB, db weave.KVStore, owner weave.Address, beans coin.Coin, plantedAt weave.UnixTime) {
	t.Helper()

	var pos Position
	if err := NewPositionBucket().One(db, owner, &pos); err != nil {
		t.Fatalf("cannot load position: %s", err)
	}
	if !pos.Beans.Equals(beans) {
		t.Fatalf("want %q beans, got %q", beans, pos.Beans)
	}
	if pos.PlantedAt != plantedAt {
		t.Fatalf("want planted at %d, got %d", plantedAt, pos.PlantedAt)
	}
}

func assertNoPosition(t testing.TB, db weave.KVStore, owner weave.Address) {
	t.Helper()

	var pos Position
	if err := NewPositionBucket().One(db, owner, &pos); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want no position, got %+v, %+v", pos, err)
	}
}

func assertPool(t testing.TB, db weave.KVStore, liquidity, fees coin.Coin) {
	t.Helper()

	var pool Pool
	if err := NewPoolBucket().One(db, poolKey, &pool); err != nil {
		t.Fatalf("cannot load pool: %s", err)
	}
	if !pool.Liquidity.Equals(liquidity) {
		t.Fatalf("want %q liquidity, got %q", liquidity, pool.Liquidity)
	}
	if !pool.CollectedFees.Equals(fees) {
		t.Fatalf("want %q collected fees, got %q", fees, pool.CollectedFees)
	}
}

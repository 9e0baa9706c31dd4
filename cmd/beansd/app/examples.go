package app

import (
	"github.com/iov-one/magicbeans/x/magicbeans"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/commands"
	"github.com/iov-one/weave/crypto"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/sigs"
)

// Examples generates some example structs to dump out with testgen
func Examples() []commands.Example {
	wallet := &cash.Set{
		Metadata: &weave.Metadata{Schema: 1},
		Coins: []*coin.Coin{
			{Whole: 50000, Ticker: "BEAN"},
		},
	}

	priv := crypto.GenPrivKeyEd25519()
	pub := priv.PublicKey()
	user := &sigs.UserData{
		Metadata: &weave.Metadata{Schema: 1},
		Pubkey:   pub,
		Sequence: 17,
	}

	amt := coin.NewCoin(250, 0, "BEAN")
	deposit := &cash.SendMsg{
		Metadata:    &weave.Metadata{Schema: 1},
		Source:      pub.Address(),
		Destination: magicbeans.PoolAddress(),
		Amount:      &amt,
		Memo:        "Magic beans",
	}
	plant := &magicbeans.PlantMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Planter:  pub.Address(),
		Amount:   coin.NewCoin(100, 0, "BEAN"),
	}
	replant := &magicbeans.ReplantMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Planter:  pub.Address(),
	}
	sell := &magicbeans.SellHarvestMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Seller:   pub.Address(),
	}
	position := &magicbeans.Position{
		Metadata:  &weave.Metadata{Schema: 1},
		Planter:   pub.Address(),
		Beans:     coin.NewCoin(95, 0, "BEAN"),
		PlantedAt: 1572247483,
	}

	unsigned := Tx{
		Sum: &Tx_MagicbeansPlantMsg{plant},
	}
	tx := unsigned
	sig, err := sigs.SignTx(priv, &tx, "test-123", 17)
	if err != nil {
		panic(err)
	}
	tx.Signatures = []*sigs.StdSignature{sig}

	return []commands.Example{
		{Filename: "wallet", Obj: wallet},
		{Filename: "priv_key", Obj: priv},
		{Filename: "pub_key", Obj: pub},
		{Filename: "user", Obj: user},
		{Filename: "deposit_msg", Obj: deposit},
		{Filename: "plant_msg", Obj: plant},
		{Filename: "replant_msg", Obj: replant},
		{Filename: "sell_harvest_msg", Obj: sell},
		{Filename: "position", Obj: position},
		{Filename: "unsigned_tx", Obj: &unsigned},
		{Filename: "signed_tx", Obj: &tx},
	}
}

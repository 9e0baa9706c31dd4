package client

import (
	beansd "github.com/iov-one/magicbeans/cmd/beansd/app"
	"github.com/iov-one/magicbeans/x/magicbeans"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/sigs"
)

// Tx is all the interfaces we need rolled into one
type Tx interface {
	weave.Tx
	sigs.SignedTx
	AppendSignature(sig *sigs.StdSignature)
}

type beansTx struct {
	*beansd.Tx
}

var _ Tx = beansTx{}

func (m beansTx) AppendSignature(sig *sigs.StdSignature) {
	m.Tx.Signatures = append(m.Tx.Signatures, sig)
}

// BuildSendTx will create an unsigned tx to move tokens. Sending tokens to
// the pool address plants them.
func BuildSendTx(src, dest weave.Address, amount coin.Coin, memo string) Tx {
	return beansTx{&beansd.Tx{
		Sum: &beansd.Tx_CashSendMsg{CashSendMsg: &cash.SendMsg{
			Metadata:    &weave.Metadata{Schema: 1},
			Source:      src,
			Destination: dest,
			Amount:      &amount,
			Memo:        memo,
		}},
	}}
}

// BuildPlantTx will create an unsigned tx to plant given amount
func BuildPlantTx(planter weave.Address, amount coin.Coin) Tx {
	return beansTx{&beansd.Tx{
		Sum: &beansd.Tx_MagicbeansPlantMsg{MagicbeansPlantMsg: &magicbeans.PlantMsg{
			Metadata: &weave.Metadata{Schema: 1},
			Planter:  planter,
			Amount:   amount,
		}},
	}}
}

// BuildReplantTx will create an unsigned tx to replant all grown beans
func BuildReplantTx(planter weave.Address) Tx {
	return beansTx{&beansd.Tx{
		Sum: &beansd.Tx_MagicbeansReplantMsg{MagicbeansReplantMsg: &magicbeans.ReplantMsg{
			Metadata: &weave.Metadata{Schema: 1},
			Planter:  planter,
		}},
	}}
}

// BuildSellHarvestTx will create an unsigned tx to sell all grown beans
func BuildSellHarvestTx(seller weave.Address) Tx {
	return beansTx{&beansd.Tx{
		Sum: &beansd.Tx_MagicbeansSellHarvestMsg{MagicbeansSellHarvestMsg: &magicbeans.SellHarvestMsg{
			Metadata: &weave.Metadata{Schema: 1},
			Seller:   seller,
		}},
	}}
}

// SignTx modifies the tx in-place, adding signatures
func SignTx(tx Tx, signer *PrivateKey, chainID string, nonce int64) error {
	sig, err := sigs.SignTx(signer, tx, chainID, nonce)
	if err != nil {
		return err
	}
	tx.AppendSignature(sig)
	return nil
}

// WrapTx returns a signable view of given transaction, for example one that
// was decoded with ParseBeansTx.
func WrapTx(tx *beansd.Tx) Tx {
	return beansTx{tx}
}

// ParseBeansTx will load a serialized tx into a format we can read
func ParseBeansTx(data []byte) (*beansd.Tx, error) {
	var tx beansd.Tx
	if err := tx.Unmarshal(data); err != nil {
		return nil, err
	}
	return &tx, nil
}

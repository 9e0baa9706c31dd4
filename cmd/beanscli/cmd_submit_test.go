package main

import (
	"bytes"
	"testing"

	"github.com/iov-one/magicbeans/cmd/beansd/client"
	"github.com/iov-one/magicbeans/x/magicbeans"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/weavetest/assert"
	abci "github.com/tendermint/tendermint/abci/types"
	ctypes "github.com/tendermint/tendermint/rpc/core/types"
)

func TestCmdSubmitSellHarvest(t *testing.T) {
	seller := weavetest.NewCondition().Address()
	paid := coin.NewCoin(19, 0, "BEAN")
	raw, err := paid.Marshal()
	assert.Nil(t, err)

	mock := &clientMock{
		broadcast: client.BroadcastTxResponse{
			Response: &ctypes.ResultBroadcastTxCommit{
				DeliverTx: abci.ResponseDeliverTx{Data: raw},
			},
		},
	}
	defer withClient(mock)()

	var input bytes.Buffer
	_, err = writeTx(&input, client.BuildSellHarvestTx(seller))
	assert.Nil(t, err)

	var output bytes.Buffer
	if err := cmdSubmitTransaction(&input, &output, nil); err != nil {
		t.Fatalf("cannot submit transaction: %s", err)
	}
	assert.Equal(t, "paid: 19 BEAN\n", output.String())

	msg, err := mock.submitted.GetMsg()
	assert.Nil(t, err)
	assert.Equal(t, seller, msg.(*magicbeans.SellHarvestMsg).Seller)
}

func TestCmdSubmitRejected(t *testing.T) {
	defer withClient(&clientMock{
		broadcast: client.BroadcastTxResponse{
			Response: &ctypes.ResultBroadcastTxCommit{
				DeliverTx: abci.ResponseDeliverTx{Code: 12, Log: "nothing for sale"},
			},
		},
	})()

	var input bytes.Buffer
	_, err := writeTx(&input, client.BuildSellHarvestTx(weavetest.NewCondition().Address()))
	assert.Nil(t, err)

	var output bytes.Buffer
	if err := cmdSubmitTransaction(&input, &output, nil); err == nil {
		t.Fatal("want a broadcast error")
	}
	assert.Equal(t, 0, output.Len())
}

func TestExtractResponse(t *testing.T) {
	planter := weavetest.NewCondition().Address()
	pos := magicbeans.Position{
		Metadata:  &weave.Metadata{Schema: 1},
		Planter:   planter,
		Beans:     coin.NewCoin(95, 0, "BEAN"),
		PlantedAt: weave.UnixTime(1572247483),
	}
	rawPos, err := pos.Marshal()
	assert.Nil(t, err)

	got, err := extractResponse(client.BuildPlantTx(planter, coin.NewCoin(100, 0, "BEAN")), rawPos)
	assert.Nil(t, err)
	assert.Equal(t, "planter: "+planter.String()+"\nbeans: 95 BEAN\nplanted at: 2019-10-28T07:24:43Z", got)

	// Transfers have no formatter.
	got, err = extractResponse(client.BuildSendTx(planter, magicbeans.PoolAddress(), coin.NewCoin(1, 0, "BEAN"), ""), nil)
	assert.Nil(t, err)
	assert.Equal(t, "", got)

	_, err = extractResponse(client.BuildSellHarvestTx(planter), []byte{0xff, 0xff})
	assert.Equal(t, true, err != nil)
}

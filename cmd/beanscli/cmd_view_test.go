package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iov-one/magicbeans/cmd/beansd/client"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/weavetest"
)

func TestCmdTransactionView(t *testing.T) {
	var input bytes.Buffer
	tx := client.BuildPlantTx(weavetest.NewCondition().Address(), coin.NewCoin(3, 0, "BEAN"))
	if _, err := writeTx(&input, tx); err != nil {
		t.Fatalf("cannot marshal transaction: %s", err)
	}

	var output bytes.Buffer
	if err := cmdTransactionView(&input, &output, nil); err != nil {
		t.Fatalf("cannot view a transaction: %s", err)
	}
	for _, want := range []string{`"MagicbeansPlantMsg"`, `"ticker": "BEAN"`, `"whole": 3`} {
		if !strings.Contains(output.String(), want) {
			t.Fatalf("%s missing from:\n%s", want, output.String())
		}
	}
}

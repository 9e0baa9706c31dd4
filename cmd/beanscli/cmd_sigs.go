package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/magicbeans/cmd/beansd/client"
)

func cmdSignTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Sign given transaction. This is decoding a transaction data from standard
input, adds a signature and writes back to standard output signed transaction
content.

Chain ID and the signer sequence are fetched from the node unless provided.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl  = flTendermint(fl)
		keyPathFl = flKeyPath(fl)
		chainIDFl = fl.String("chain-id", "", "Chain ID the signature is valid for. If not provided, it is read from the genesis of the node.")
		nonceFl   = fl.Int64("nonce", -1, "Sequence number of the signer. If negative, the next sequence is queried from the node.")
	)
	fl.Parse(args)

	key, err := client.LoadPrivateKey(*keyPathFl)
	if err != nil {
		return fmt.Errorf("cannot load private key: %s", err)
	}

	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction from input: %s", err)
	}

	chainID, nonce := *chainIDFl, *nonceFl
	if chainID == "" || nonce < 0 {
		beans := newClient(*tmAddrFl)
		if chainID == "" {
			if chainID, err = beans.ChainID(); err != nil {
				return fmt.Errorf("cannot fetch chain ID: %s", err)
			}
		}
		if nonce < 0 {
			if nonce, err = client.NewNonce(beans, key.PublicKey().Address()).Next(); err != nil {
				return fmt.Errorf("cannot get the next sequence number: %s", err)
			}
		}
	}

	if err := client.SignTx(client.WrapTx(tx), key, chainID, nonce); err != nil {
		return fmt.Errorf("cannot sign transaction: %s", err)
	}
	_, err = writeTx(output, tx)
	return err
}

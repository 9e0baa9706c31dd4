package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"

	beansd "github.com/iov-one/magicbeans/cmd/beansd/app"
	"github.com/iov-one/magicbeans/cmd/beansd/client"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/pkg/errors"
)

// writeTx serialize the transaction using a protocol buffer. First bytes
// written contain the information how much space the transaction takes, so
// that many transactions can be streamed one after another.
func writeTx(w io.Writer, tx weave.Marshaller) (int, error) {
	b, err := tx.Marshal()
	if err != nil {
		return 0, err
	}

	var size [txHeaderSize]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(b)))

	if n, err := w.Write(size[:]); err != nil {
		return n, err
	}
	if n, err := w.Write(b); err != nil {
		return n + txHeaderSize, err
	}
	return txHeaderSize + len(b), nil
}

func readTx(r io.Reader) (*beansd.Tx, int, error) {
	var size [txHeaderSize]byte
	if n, err := io.ReadFull(r, size[:]); err != nil {
		return nil, n, err
	}
	msgSize := binary.BigEndian.Uint32(size[:])
	raw := make([]byte, msgSize)
	if n, err := io.ReadFull(r, raw); err != nil {
		return nil, n + txHeaderSize, err
	}

	tx, err := client.ParseBeansTx(raw)
	if err != nil {
		return nil, int(msgSize + txHeaderSize), errors.Wrap(err, "parse transaction")
	}
	return tx, int(msgSize + txHeaderSize), nil
}

const txHeaderSize = 4

// beansClient is the part of the node client used by the commands.
type beansClient interface {
	client.Client
	ChainID() (string, error)
}

// newClient returns a client connected to the Tendermint node at given
// address.
var newClient = func(tmAddr string) beansClient {
	return client.NewClient(client.NewHTTPConnection(tmAddr))
}

// env returns the value of an environment variable if provided (even if empty)
// or a fallback value.
func env(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok {
		return v
	}
	return fallback
}

func flKeyPath(fl *flag.FlagSet) *string {
	return fl.String("key", env("BEANSCLI_PRIV_KEY", os.Getenv("HOME")+"/.beans.priv.key"),
		"Path to the private key file. You can use BEANSCLI_PRIV_KEY environment variable to set it.")
}

func flTendermint(fl *flag.FlagSet) *string {
	return fl.String("tm", env("BEANSCLI_TM_ADDR", "http://localhost:26657"),
		"Tendermint node address. You can use BEANSCLI_TM_ADDR environment variable to set it.")
}

// flAddress returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided.
// If given value cannot be deserialized, process is terminated.
func flAddress(fl *flag.FlagSet, name, defaultVal, usage string) *weave.Address {
	var a weave.Address
	if defaultVal != "" {
		var err error
		a, err = weave.ParseAddress(defaultVal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q weave.Address flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&a, name, usage)
	return &a
}

// flCoin returns a value that is being initialized with given default value
// and optionally overwritten by a command line argument if provided.
// If given value cannot be deserialized, process is terminated.
func flCoin(fl *flag.FlagSet, name, defaultVal, usage string) *coin.Coin {
	var c coin.Coin
	if defaultVal != "" {
		var err error
		c, err = coin.ParseHumanFormat(defaultVal)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot parse %q coin flag value. %s", name, err)
			os.Exit(2)
		}
	}
	fl.Var(&c, name, usage)
	return &c
}

// participant returns the address given with the flag or, when the flag was
// not set, the address of the private key.
func participant(addr weave.Address, keyPath string) (weave.Address, error) {
	if len(addr) != 0 {
		return addr, nil
	}
	a, err := client.KeyAddress(keyPath)
	if err != nil {
		return nil, errors.WithMessage(err, "no address given and cannot use the private key")
	}
	return a, nil
}

package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/magicbeans/cmd/beansd/client"
)

func cmdKeygen(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Generate a new private key.

When successful a new file with hex encoded private key is created and the
address of that key is printed. This command fails if the private key file
already exists.
`)
		fl.PrintDefaults()
	}
	keyPathFl := flKeyPath(fl)
	fl.Parse(args)

	key := client.GenPrivateKey()
	// Never replace an existing key, the user must delete it by hand.
	if err := client.SavePrivateKey(key, *keyPathFl, false); err != nil {
		return fmt.Errorf("cannot save private key: %s", err)
	}
	_, err := fmt.Fprintln(output, key.PublicKey().Address())
	return err
}

func cmdKeyaddr(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print out a hex-address associated with your private key.
`)
		fl.PrintDefaults()
	}
	keyPathFl := flKeyPath(fl)
	fl.Parse(args)

	addr, err := client.KeyAddress(*keyPathFl)
	if err != nil {
		return fmt.Errorf("cannot load private key: %s", err)
	}
	_, err = fmt.Fprintln(output, addr)
	return err
}

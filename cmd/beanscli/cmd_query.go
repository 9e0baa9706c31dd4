package main

import (
	"flag"
	"fmt"
	"io"
)

func cmdPosition(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the planting position of an address. Growth is not included, the beans
are the planted balance.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl  = flTendermint(fl)
		keyPathFl = flKeyPath(fl)
		planterFl = flAddress(fl, "planter", "", "Address of the planter. If not provided, the address of the private key is used.")
	)
	fl.Parse(args)

	planter, err := participant(*planterFl, *keyPathFl)
	if err != nil {
		return err
	}
	resp, err := newClient(*tmAddrFl).GetPosition(planter)
	if err != nil {
		return fmt.Errorf("cannot query position: %s", err)
	}
	if resp == nil {
		return fmt.Errorf("%s never planted", planter)
	}
	_, err = fmt.Fprintf(output, "%s\nheight: %d\n", describePosition(&resp.Position), resp.Height)
	return err
}

func cmdPool(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the bean pool liquidity and the total of collected owner fees.
`)
		fl.PrintDefaults()
	}
	tmAddrFl := flTendermint(fl)
	fl.Parse(args)

	resp, err := newClient(*tmAddrFl).GetPool()
	if err != nil {
		return fmt.Errorf("cannot query pool: %s", err)
	}
	if resp == nil {
		return fmt.Errorf("no beans were planted yet")
	}
	_, err = fmt.Fprintf(output, "liquidity: %s\ncollected fees: %s\nheight: %d\n",
		resp.Pool.Liquidity.String(), resp.Pool.CollectedFees.String(), resp.Height)
	return err
}

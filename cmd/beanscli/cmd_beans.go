package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/magicbeans/cmd/beansd/client"
	"github.com/iov-one/magicbeans/x/magicbeans"
)

func cmdPlant(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction that plants given amount. The owner fee is taken from the
amount and the rest is credited as beans. Planting restarts the growth of the
whole position.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = flKeyPath(fl)
		planterFl = flAddress(fl, "planter", "", "Address of the planter. If not provided, the address of the private key is used.")
		amountFl  = flCoin(fl, "amount", "1 BEAN", "Amount of the native currency to plant.")
	)
	fl.Parse(args)

	planter, err := participant(*planterFl, *keyPathFl)
	if err != nil {
		return err
	}
	_, err = writeTx(output, client.BuildPlantTx(planter, *amountFl))
	return err
}

func cmdReplant(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction that adds all grown beans to the planted position.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = flKeyPath(fl)
		planterFl = flAddress(fl, "planter", "", "Address of the planter. If not provided, the address of the private key is used.")
	)
	fl.Parse(args)

	planter, err := participant(*planterFl, *keyPathFl)
	if err != nil {
		return err
	}
	_, err = writeTx(output, client.BuildReplantTx(planter))
	return err
}

func cmdSellHarvest(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction that sells all grown beans. Sold beans are paid out from
the pool liquidity and removed from the position.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = flKeyPath(fl)
		sellerFl  = flAddress(fl, "seller", "", "Address of the seller. If not provided, the address of the private key is used.")
	)
	fl.Parse(args)

	seller, err := participant(*sellerFl, *keyPathFl)
	if err != nil {
		return err
	}
	_, err = writeTx(output, client.BuildSellHarvestTx(seller))
	return err
}

func cmdSendTokens(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for transfering funds from the source account to the
destination account. By default funds are sent to the bean pool, which plants
them on behalf of the source account.
`)
		fl.PrintDefaults()
	}
	var (
		keyPathFl = flKeyPath(fl)
		srcFl     = flAddress(fl, "src", "", "A source account address that the funds are send from. If not provided, the address of the private key is used.")
		dstFl     = flAddress(fl, "dst", magicbeans.PoolAddress().String(), "A destination account address that the funds are send to.")
		amountFl  = flCoin(fl, "amount", "1 BEAN", "An amount that is to be transferred between the source to the destination accounts.")
		memoFl    = fl.String("memo", "", "A short message attached to the transfer operation.")
	)
	fl.Parse(args)

	src, err := participant(*srcFl, *keyPathFl)
	if err != nil {
		return err
	}
	_, err = writeTx(output, client.BuildSendTx(src, *dstFl, *amountFl, *memoFl))
	return err
}

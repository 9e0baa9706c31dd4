package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/magicbeans/x/magicbeans"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/pkg/errors"
)

func cmdSubmitTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read binary serialized transaction from standard input and submit it.

For bean transactions the result is written out: the position after planting
or replanting, and the amount paid for a harvest sale.
`)
		fl.PrintDefaults()
	}
	tmAddrFl := flTendermint(fl)
	fl.Parse(args)

	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction from input: %s", err)
	}

	resp := newClient(*tmAddrFl).BroadcastTx(tx)
	if err := resp.IsError(); err != nil {
		return fmt.Errorf("cannot broadcast transaction: %s", err)
	}

	pretty, err := extractResponse(tx, resp.Response.DeliverTx.Data)
	if err != nil {
		return fmt.Errorf("cannot extract response: %s", err)
	}
	if pretty != "" {
		fmt.Fprintln(output, pretty)
	}
	return nil
}

// extractResponse returns a human readable representation of the deliver
// result of given transaction. It returns an empty string if no formatter is
// registered for the transaction message.
func extractResponse(tx weave.Tx, respData []byte) (string, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return "", errors.Wrap(err, "cannot extract message from transaction")
	}
	format, ok := formatters[msg.Path()]
	if !ok {
		return "", nil
	}
	return format(respData)
}

// formatters contains a mapping of a message path to response parser.
var formatters = map[string]func([]byte) (string, error){
	magicbeans.PlantMsg{}.Path():       fmtPosition,
	magicbeans.ReplantMsg{}.Path():     fmtPosition,
	magicbeans.SellHarvestMsg{}.Path(): fmtPaid,
}

func fmtPosition(raw []byte) (string, error) {
	var pos magicbeans.Position
	if err := pos.Unmarshal(raw); err != nil {
		return "", errors.Wrap(err, "cannot parse position")
	}
	return describePosition(&pos), nil
}

func fmtPaid(raw []byte) (string, error) {
	var paid coin.Coin
	if err := paid.Unmarshal(raw); err != nil {
		return "", errors.Wrap(err, "cannot parse payout")
	}
	return fmt.Sprintf("paid: %s", paid.String()), nil
}

func describePosition(pos *magicbeans.Position) string {
	planted := "never"
	if pos.PlantedAt != 0 {
		planted = pos.PlantedAt.Time().UTC().Format("2006-01-02T15:04:05Z")
	}
	return fmt.Sprintf("planter: %s\nbeans: %s\nplanted at: %s", pos.Planter, pos.Beans.String(), planted)
}

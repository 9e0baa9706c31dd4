package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	beansd "github.com/iov-one/magicbeans/cmd/beansd/app"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/commands"
	"github.com/iov-one/weave/commands/server"
	"github.com/tendermint/tendermint/libs/log"
)

var (
	flagHome = "home"
	varHome  *string
)

func init() {
	defaultHome := filepath.Join(os.ExpandEnv("$HOME"), ".beans")
	varHome = flag.String(flagHome, defaultHome, "directory to store files under")

	flag.CommandLine.Usage = func() { helpMessage(os.Stdout) }

	available = []command{
		{
			name:  "help",
			short: "Print this message",
			run: func(log.Logger, string, []string) error {
				helpMessage(os.Stdout)
				return nil
			},
		},
		{
			name:  "init",
			args:  "[ticker] [address]",
			short: "Write the genesis app state. Ticker defaults to BEAN, a new key is generated when no address is given",
			run: func(logger log.Logger, home string, args []string) error {
				return server.InitCmd(beansd.GenInitOptions, logger, home, args)
			},
		},
		{
			name:  "start",
			short: "Run the abci server",
			run: func(logger log.Logger, home string, args []string) error {
				return server.StartCmd(beansd.GenerateApp, logger, home, args)
			},
		},
		{
			name:  "testgen",
			args:  "<dir>",
			short: "Write example objects to given directory",
			run: func(_ log.Logger, _ string, args []string) error {
				return commands.TestGenCmd(beansd.Examples(), args)
			},
		},
		{
			name:  "version",
			short: "Print the weave version",
			run: func(log.Logger, string, []string) error {
				fmt.Println(weave.Version)
				return nil
			},
		},
	}
}

type command struct {
	name  string
	args  string
	short string
	run   func(logger log.Logger, home string, args []string) error
}

// available lists every command in the order it is presented to the user.
// It is set in init, because the help command prints it.
var available []command

func helpMessage(w io.Writer) {
	fmt.Fprintln(w, "beansd")
	fmt.Fprintln(w, "          Magic Beans node")
	fmt.Fprintln(w, "")
	for _, c := range available {
		fmt.Fprintf(w, "%-26s %s\n", c.name+" "+c.args, c.short)
	}
	fmt.Fprintln(w, `
  -home string
        directory to store files under (default "$HOME/.beans")`)
}

func findCommand(name string) (command, bool) {
	for _, c := range available {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func main() {
	logger := log.NewTMLogger(log.NewSyncWriter(os.Stdout)).
		With("module", "beans")

	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Println("Missing command:")
		helpMessage(os.Stdout)
		os.Exit(1)
	}

	var err error
	if c, ok := findCommand(flag.Arg(0)); ok {
		err = c.run(logger, *varHome, flag.Args()[1:])
	} else {
		err = fmt.Errorf("unknown command: %s", flag.Arg(0))
	}

	if err != nil {
		fmt.Printf("Error: %+v\n\n", err)
		helpMessage(os.Stdout)
		os.Exit(1)
	}
}

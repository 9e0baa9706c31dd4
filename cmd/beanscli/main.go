package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// commands is a register of all commands this program can execute. The name
// is matched against the first argument.
//
// A command function reads only from the given input and writes only to the
// given output. Args are the command line arguments without the program and
// the command name, parsed with the flag package.
//
// Transaction commands are meant to be combined into a pipeline:
//
//   $ beanscli plant -amount "10 BEAN" \
//       | beanscli sign \
//       | beanscli submit
//
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"keyaddr":      cmdKeyaddr,
	"keygen":       cmdKeygen,
	"plant":        cmdPlant,
	"pool":         cmdPool,
	"position":     cmdPosition,
	"replant":      cmdReplant,
	"sell-harvest": cmdSellHarvest,
	"send-tokens":  cmdSendTokens,
	"sign":         cmdSignTransaction,
	"submit":       cmdSubmitTransaction,
	"version":      cmdVersion,
	"view":         cmdTransactionView,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s is a command line client for the magic beans application.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	fmt.Fprintln(out, gitHash)
	return nil
}

// gitHash is set during the compilation time.
var gitHash = "dev"

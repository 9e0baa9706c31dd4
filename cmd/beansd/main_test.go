package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestHelpMessageListsEveryCommand(t *testing.T) {
	var out bytes.Buffer
	helpMessage(&out)
	help := out.String()

	for _, c := range available {
		if _, ok := findCommand(c.name); !ok {
			t.Fatalf("%q command cannot be found", c.name)
		}
		if c.run == nil {
			t.Fatalf("%q command has no implementation", c.name)
		}
		if !strings.Contains(help, c.name+" "+c.args) {
			t.Fatalf("%q command usage missing from help:\n%s", c.name, help)
		}
	}

	// Positional arguments of the commands that take them.
	for _, usage := range []string{"init [ticker] [address]", "testgen <dir>"} {
		if !strings.Contains(help, usage) {
			t.Fatalf("%q missing from help:\n%s", usage, help)
		}
	}

	if _, ok := findCommand("getblock"); ok {
		t.Fatal("getblock is not a beansd command")
	}
}

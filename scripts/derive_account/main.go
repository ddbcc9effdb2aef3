// derive_account prints the Banano account of a wallet seed for testing.
//
// Usage:
//
//	go run ./scripts/derive_account <64 hex seed | 24 word phrase> [index]
//
// Or with stdin:
//
//	echo "24 word phrase" | go run ./scripts/derive_account
//
// The seed may be given as hex, as stored in config.json, or as the phrase
// printed by "bantip derive --mnemonic". A trailing number selects the
// account index (default 0, the index the bot uses).
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/complex-gh/bantip/internal/banano"
)

func main() {
	args := os.Args[1:]
	var index uint64
	if n := len(args); n > 1 {
		if v, err := strconv.ParseUint(args[n-1], 10, 32); err == nil {
			index = v
			args = args[:n-1]
		}
	}

	var input string
	if len(args) > 0 {
		input = strings.Join(args, " ")
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			input = strings.TrimSpace(scanner.Text())
		}
	}

	if input == "" {
		fmt.Fprintln(os.Stderr, "Usage: derive_account <64 hex seed | \"24 word phrase\"> [index]")
		fmt.Fprintln(os.Stderr, "   or: echo \"seed\" | derive_account")
		os.Exit(1)
	}

	seed, err := banano.ParseSeed(input)
	if err != nil {
		seed, err = banano.SeedFromMnemonic(input)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(banano.EncodeAccount(banano.DeriveKey(seed, uint32(index)).Public()))
}

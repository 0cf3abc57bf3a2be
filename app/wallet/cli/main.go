// Package main is the wallet CLI for generating keys and sending signed
// transactions to a ledger node.
package main

import "github.com/ardanlabs/powledger/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}

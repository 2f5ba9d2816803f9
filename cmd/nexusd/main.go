package main

import "github.com/nexus-ledger/nexusd/internal/cli"

func main() {
	cli.Execute()
}

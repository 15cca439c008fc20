package main

import "github.com/pfrederiksen/tradeshow-events/internal/cli"

var version = "dev"

func main() {
	cli.Version = version
	cli.Execute()
}

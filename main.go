package main

import "github.com/stratavcs/strata/cli"

func main() {
	cli.Execute()
}

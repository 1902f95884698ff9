package main

import "github.com/deusflow/newsflash/internal/cli"

func main() {
	cli.Execute()
}

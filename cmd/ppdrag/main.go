package main

import "ppdrag/internal/cli"

func main() {
	cli.Execute()
}

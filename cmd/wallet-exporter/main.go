package main

import "github.com/vietddude/wallet-exporter/internal/cli"

func main() {
	cli.Execute()
}

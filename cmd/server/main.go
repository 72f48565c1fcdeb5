package main

import "sweetshop/internal/cli"

func main() {
	cli.Execute()
}

package main

import "kalendo/backend/internal/cli"

func main() {
	cli.Execute()
}

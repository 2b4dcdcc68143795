package main

import "github.com/vietddude/studyclient/internal/cli"

func main() {
	cli.Execute()
}

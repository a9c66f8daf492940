package main

import "github.com/davarch/release-reporter/cmd/release-reporter/cli"

func main() {
	cli.Execute()
}

package main

import "github.com/splitbook/splitbook-services/cmd"

func main() {
	cmd.Execute()
}

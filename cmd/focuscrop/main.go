package main

import "github.com/menta2k/focuscrop/cmd/focuscrop/cmd"

func main() {
	cmd.Execute()
}

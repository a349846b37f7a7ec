package main

import "github.com/fincast/fincast/cmd"

func main() {
	cmd.Execute()
}

package main

import "rokuterm/cmd"

func main() {
	cmd.Execute()
}

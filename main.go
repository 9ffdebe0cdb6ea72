package main

import "slimbox/cmd"

func main() {
	cmd.Execute()
}

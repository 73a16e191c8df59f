package main

import "github.com/kiesman99/tilepad/cmd"

func main() {
	cmd.Execute()
}

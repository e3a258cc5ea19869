package main

import "github.com/Shashank-1177/SBFood/cmd"

func main() {
	cmd.Execute()
}

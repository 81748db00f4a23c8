package main

import "github.com/notargets/godpg/cmd"

func main() {
	cmd.Execute()
}

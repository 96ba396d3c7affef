package main

import "github.com/notargets/gocbfm/cmd"

func main() {
	cmd.Execute()
}

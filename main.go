package main

import "github.com/jsphweid/polyindex/cmd"

func main() {
	cmd.Execute()
}

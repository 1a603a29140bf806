package main

import "github.com/timvw/horza/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/foreseegroup/unitsvc/cmd"

func main() {
	cmd.Execute()
}

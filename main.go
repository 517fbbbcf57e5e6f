package main

import (
	"AuxFM/cmd"
)

func main() {
	cmd.Execute()
}

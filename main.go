package main

import (
	"github.com/0xPolygon/polygon-zenith/command/root"
)

func main() {
	root.NewRootCommand().Execute()
}

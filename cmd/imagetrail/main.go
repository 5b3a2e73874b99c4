package main

import (
	"github.com/DrSkyle/imagetrail/cmd/imagetrail/commands"
)

func main() {
	commands.Execute()
}

package main

import (
	"os"

	"github.com/teranos/sdkgen/cmd/sdkgen/commands"
)

func main() {
	os.Exit(commands.Execute())
}

// ARRCON is a command-line Remote-CONsole (RCON) client for the Source
// RCON Protocol, also compatible with similar protocols such as the one
// used by Minecraft.
package main

import (
	"os"

	"github.com/radj307/ARRCON/internal/cliapp"
)

func main() {
	os.Exit(cliapp.Execute())
}

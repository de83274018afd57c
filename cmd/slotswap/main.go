package main

import (
	"fmt"
	"os"
	_ "time/tzdata" // BOT_TIMEZONE must resolve in minimal containers

	"github.com/Freeeeeet/slot_swapper/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// main is the entry point for the workpulse CLI.
package main

import (
	"fmt"
	"os"

	"github.com/workpulse/workpulse/cmd"
	"github.com/workpulse/workpulse/internal/iostore"
)

func main() {
	err := cmd.Execute()

	// Release database handles and flush profiles before deciding exit status.
	iostore.CloseStores()
	if perr := cmd.StopProfiling(); perr != nil {
		fmt.Fprintln(os.Stderr, "⚠️", perr)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/locsort/internal/core"
)

func main() {
	// A missing .env is normal for the CLI.
	_ = godotenv.Load()

	cmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr, os.LookupEnv)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		if core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, core.FormatUserError(err))
		}
		os.Exit(1)
	}
}

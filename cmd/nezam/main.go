package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/idartimm2-jpg/nezam/internal/cli"
)

func main() {
	_ = godotenv.Load() // .env is optional

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}

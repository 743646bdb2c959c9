package main

import (
	"os"

	"github.com/emrzvv/rcg/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		f := &cli.OutputFormatter{Format: formatOf(cmd.PersistentFlags().Lookup("format").Value.String()), Writer: os.Stderr}
		_ = f.Error(err)
		os.Exit(cli.GetExitCode(err))
	}
}

func formatOf(s string) string {
	if s == "json" {
		return s
	}
	return "text"
}

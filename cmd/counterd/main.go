package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

//nolint:all
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	app := cli.NewApp()

	app.Version = version
	app.Name = "counterd"
	app.Usage = "Daemon serving randomness-backed guess-and-settle rounds"
	app.Commands = append(app.Commands, &startCmd, &configCmd, &versionCmd)
	app.Action = startAction

	if err := app.Run(os.Args); err != nil {
		fmt.Println(fmt.Errorf("error: %v", err))
		os.Exit(1)
	}
}

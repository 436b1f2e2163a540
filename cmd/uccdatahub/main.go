package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	// Local development keeps its environment in a .env file; absence
	// is fine.
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "uccdatahub",
		Usage: "UCC filing data hub API server",
		Commands: []*cli.Command{
			serveCommand,
			seedCommand,
			nanoidCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("application failed")
	}
}

package main

import (
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/vendalytics/backend-go/pkg/logger"
)

// The analytics binary runs reports against the sales store without going
// through the HTTP API: ad-hoc reports, demo seeding and object-store export.
func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "analytics",
		Usage: "Run sales analytics from the command line",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json-logs",
				Usage: "Emit logs as plain JSON instead of the console format",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("json-logs") {
				logger.UseJSON()
			}
			return nil
		},
		Commands: []*cli.Command{
			reportCommand(),
			seedCommand(),
			exportCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newTenantFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "tenant",
		Usage:    "Tenant whose rows to use",
		Required: true,
		EnvVars:  []string{"ANALYTICS_TENANT"},
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"tasky/internal/config"

	"github.com/urfave/cli/v3"
)

func main() {
	config.LoadDotEnv()

	if err := rootCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "schemactl: %v\n", err)
		os.Exit(1)
	}
}

func rootCommand() *cli.Command {
	return &cli.Command{
		Name:  "schemactl",
		Usage: "Create and inspect the validated MongoDB collections used by tasky",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "mongodb-uri",
				Usage: "MongoDB connection string (default: $MONGODB_URI)",
			},
			&cli.StringFlag{
				Name:    "database",
				Aliases: []string{"d"},
				Usage:   "database name (default: $MONGODB_DATABASE)",
			},
			&cli.StringFlag{
				Name:    "spec-file",
				Aliases: []string{"f"},
				Usage:   "YAML collection spec file (default: $SCHEMA_SPEC_FILE, or the built-in users and tasks specs)",
			},
			&cli.StringFlag{
				Name:  "policy",
				Usage: "conflict policy for existing validators: strict or lenient",
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "number of collections reconciled in parallel",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "disable styled output",
			},
		},
		Commands: []*cli.Command{
			bootstrapCommand(),
			planCommand(),
			showCommand(),
			tokenCommand(),
		},
	}
}

// loadConfig reads the environment and applies any flags the user set
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	return config.LoadConfigWith(func(c *config.Config) {
		if v := cmd.String("mongodb-uri"); v != "" {
			c.Mongo.URI = v
		}
		if v := cmd.String("database"); v != "" {
			c.Mongo.Database = v
		}
		if v := cmd.String("spec-file"); v != "" {
			c.Schema.SpecFile = v
		}
		if v := cmd.String("policy"); v != "" {
			c.Schema.ConflictPolicy = v
		}
		if cmd.IsSet("concurrency") {
			c.Schema.Concurrency = int(cmd.Int("concurrency"))
		}
	})
}

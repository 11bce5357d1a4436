package main

import (
	"errors"
	"log"
	"os"

	"github.com/remlabs/gorem/cmd/goremcli/gen"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:                 "goremcli",
		HelpName:             "goremcli",
		Version:              "0.1.0",
		Usage:                "model scaffolding for gorem schemas",
		Description:          "cli for generating gorem model types from a collection schema file",
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name: "generate",
				Aliases: []string{
					"g",
					"gen",
				},
				ArgsUsage: "schema file to read and go file to write",
				Usage:     "to generate model structs with relation declarations from a schema",
				Action: func(c *cli.Context) error {
					schemaPath := c.Args().Get(0)
					outPath := c.Args().Get(1)

					if schemaPath == "" || outPath == "" {
						return errors.New("must specify schema file and output file")
					}

					log.Printf("generating models from schema [%s]", schemaPath)

					return gen.Generate(schemaPath, outPath)
				},
			},
		},
		UseShortOptionHandling: true,
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

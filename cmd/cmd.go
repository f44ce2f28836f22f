// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
		},
	}
}

func ruleFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "category",
			Usage: "Category tag to match (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:  "keyword",
			Usage: "Keyword to match in title or description (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:  "color",
			Usage: "Color word to match (repeatable)",
		},
		&cli.StringSliceFlag{
			Name:  "exclude",
			Usage: "Category tag that disqualifies a product (repeatable)",
		},
	}
}

func productFlag() cli.Flag {
	return &cli.Int64SliceFlag{
		Name:    "product",
		Aliases: []string{"p"},
		Usage:   "Product ID (repeatable)",
	}
}

func idArg() []cli.Argument {
	return []cli.Argument{&cli.StringArg{Name: "id"}}
}

// serveCommand runs the HTTP API
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "host",
				Usage: "Listen host (overrides server.host)",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "Listen port (overrides server.port)",
			},
		},
		Action: r.Serve,
	}
}

// seedCommand inserts the built-in suggestions
func seedCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "seed",
		Usage:  "Insert the built-in occasion and trend suggestions",
		Flags:  outputFlags(),
		Action: r.Seed,
	}
}

// catalogCommand manages the local product mirror
func catalogCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "catalog",
		Usage: "Product catalog mirror operations",
		Commands: []*cli.Command{
			{
				Name:  "import",
				Usage: "Import products from a JSON file",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "path"},
				},
				Action: r.CatalogImport,
			},
		},
	}
}

// editsCommand handles edit curation
func editsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "edits",
		Aliases: []string{"edit", "e"},
		Usage:   "Edit curation operations",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List edits",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "status",
						Usage: "Filter by status (suggested, approved, created, active)",
					},
				}, outputFlags()...),
				Action: r.EditsList,
			},
			{
				Name:      "show",
				Usage:     "Show an edit with its products",
				Arguments: idArg(),
				Flags:     outputFlags(),
				Action:    r.EditsShow,
			},
			{
				Name:  "create",
				Usage: "Create a manual edit",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "name"},
				},
				Flags: append(append([]cli.Flag{
					&cli.StringFlag{
						Name:  "description",
						Usage: "Edit description",
					},
					&cli.BoolFlag{
						Name:  "auto",
						Usage: "Regenerate automatically in batch runs",
					},
				}, ruleFlags()...), outputFlags()...),
				Action: r.EditsCreate,
			},
			{
				Name:      "preview",
				Usage:     "Show matching products without saving",
				Arguments: idArg(),
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum candidates (defaults to matcher.default_limit)",
					},
				}, outputFlags()...),
				Action: r.EditsPreview,
			},
			{
				Name:      "regenerate",
				Usage:     "Add newly matching products as pending",
				ArgsUsage: "[id...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "auto",
						Usage: "Regenerate every edit flagged for automatic regeneration",
					},
				},
				Action: r.EditsRegenerate,
			},
			{
				Name:      "approve",
				Usage:     "Approve pending products",
				Arguments: idArg(),
				Flags: []cli.Flag{
					productFlag(),
					&cli.BoolFlag{
						Name:  "all",
						Usage: "Approve every pending product",
					},
				},
				Action: r.EditsApprove,
			},
			{
				Name:      "reject",
				Usage:     "Reject products",
				Arguments: idArg(),
				Flags:     []cli.Flag{productFlag()},
				Action:    r.EditsReject,
			},
			{
				Name:      "add",
				Usage:     "Add products by hand",
				Arguments: idArg(),
				Flags:     []cli.Flag{productFlag()},
				Action:    r.EditsAdd,
			},
			{
				Name:      "rules",
				Usage:     "Replace an edit's rules",
				Arguments: idArg(),
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "auto",
						Usage: "Toggle automatic regeneration",
					},
				}, ruleFlags()...),
				Action: r.EditsRules,
			},
			{
				Name:      "create-term",
				Usage:     "Create the storefront term for an approved edit",
				Arguments: idArg(),
				Action:    r.EditsCreateTerm,
			},
			{
				Name:      "sync",
				Usage:     "Push approved products to the storefront",
				ArgsUsage: "<id...>",
				Action:    r.EditsSync,
			},
			{
				Name:      "export",
				Usage:     "Export an edit to a file",
				Arguments: idArg(),
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Export format (json, csv, markdown, text)",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path, or - for stdout (defaults to <slug>.<ext>)",
					},
				},
				Action: r.EditsExport,
			},
			{
				Name:      "seo",
				Usage:     "Show storefront term meta",
				Arguments: idArg(),
				Action:    r.EditsSEO,
			},
			{
				Name:      "delete",
				Usage:     "Delete an edit",
				Arguments: idArg(),
				Action:    r.EditsDelete,
			},
		},
	}
}

// reviewCommand returns the top-level TUI command for interactive review.
func reviewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "review",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch interactive TUI for reviewing edits",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-file",
				Usage: "Where logs go while the TUI is running",
				Value: "./tmp/curator-review.log",
			},
		},
		Action: r.Review,
	}
}

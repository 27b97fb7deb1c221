package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/angelmondragon/brandprices-backend/internal/backend"
	"github.com/angelmondragon/brandprices-backend/internal/prices"
	"github.com/angelmondragon/brandprices-backend/pkg/config"
	"github.com/angelmondragon/brandprices-backend/pkg/logger"
	"github.com/angelmondragon/brandprices-backend/pkg/types"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "pricectl",
		Usage: "Inspect and resolve brand prices",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Value:   "warn",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"PRICING_LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:  "seed",
				Usage: "Load the reference catalog before running the command",
			},
		},
		Commands: []*cli.Command{
			resolveCommand(),
			listCommand(),
			seedCommand(),
		},
	}
}

// session is the per-invocation state shared by the commands.
type session struct {
	logg    *logger.Logger
	backend *backend.Backend
	service prices.Service
}

func openSession(c *cli.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logg := logger.New(logger.Options{
		ServiceName: "pricectl",
		Level:       logger.ParseLevel(c.String("log-level")),
		Output:      c.App.ErrWriter,
	})

	b, err := backend.Open(c.Context, cfg, logg)
	if err != nil {
		return nil, err
	}
	if c.Bool("seed") {
		if _, err := b.Seed(c.Context, logg); err != nil {
			_ = b.Close()
			return nil, err
		}
	}

	resolver, err := prices.NewResolver(b.Prices, nil)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	svc, err := prices.NewService(b.Prices, resolver)
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return &session{logg: logg, backend: b, service: svc}, nil
}

func withSession(fn func(ctx context.Context, c *cli.Context, s *session) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		s, err := openSession(c)
		if err != nil {
			return err
		}
		defer s.backend.Close()
		return fn(c.Context, c, s)
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   formatTable,
		Usage:   "Output format (table, json)",
	}
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "Print the price that applies to a product of a brand at a moment",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "date", Aliases: []string{"d"}, Usage: "Moment as " + types.LocalDateTimeLayout, Required: true},
			&cli.Int64Flag{Name: "product", Aliases: []string{"p"}, Usage: "Product id", Required: true},
			&cli.Int64Flag{Name: "brand", Aliases: []string{"b"}, Usage: "Brand id", Required: true},
			formatFlag(),
		},
		Action: withSession(func(ctx context.Context, c *cli.Context, s *session) error {
			at, err := types.ParseLocalDateTime(c.String("date"))
			if err != nil {
				return err
			}
			resolved, ok, err := s.service.ResolvePrice(ctx, at, c.Int64("product"), c.Int64("brand"))
			if err != nil {
				return err
			}
			if !ok {
				if c.String("format") == formatJSON {
					return writeJSON(c.App.Writer, nil)
				}
				fmt.Fprintln(c.App.Writer, "no applicable price")
				return nil
			}
			if c.String("format") == formatJSON {
				return writeJSON(c.App.Writer, resolved)
			}
			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "PRODUCT\tBRAND\tPRICE LIST\tPRIORITY\tPRICE\tSTART\tEND")
			fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%s %s\t%s\t%s\n",
				resolved.ProductID, resolved.BrandID, resolved.PriceList, resolved.Priority,
				resolved.Price, resolved.Currency, resolved.StartDate, resolved.EndDate)
			return tw.Flush()
		}),
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List every stored price",
		Flags: []cli.Flag{formatFlag()},
		Action: withSession(func(ctx context.Context, c *cli.Context, s *session) error {
			list, err := s.service.ListPrices(ctx)
			if err != nil {
				return err
			}
			if c.String("format") == formatJSON {
				return writeJSON(c.App.Writer, list)
			}
			tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tBRAND\tPRODUCT\tPRICE LIST\tPRIORITY\tPRICE\tSTART\tEND")
			for _, p := range list {
				fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%s %s\t%s\t%s\n",
					p.ID, p.BrandID, p.ProductID, p.PriceList, p.Priority, p.Price, p.Currency, p.StartDate, p.EndDate)
			}
			return tw.Flush()
		}),
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load the reference catalog; existing ids are left untouched",
		Action: withSession(func(ctx context.Context, c *cli.Context, s *session) error {
			res, err := s.backend.Seed(ctx, s.logg)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "brands created: %d, prices created: %d, skipped: %d\n",
				res.BrandsCreated, res.PricesCreated, res.Skipped)
			return nil
		}),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

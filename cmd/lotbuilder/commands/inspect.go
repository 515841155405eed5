package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"git.home.luguber.info/inful/lotbuilder/internal/config"
	"git.home.luguber.info/inful/lotbuilder/internal/site"
	"git.home.luguber.info/inful/lotbuilder/internal/vehicle"
)

// InspectCmd implements the 'inspect' command.
type InspectCmd struct {
	Inventory string `help:"Inventory directory (overrides inventory.dir)"`
	Format    string `short:"f" enum:"text,json" default:"text" help:"Output format (text, json)"`
}

func (i *InspectCmd) Run(g *Global, root *CLI) error {
	cfg, err := LoadConfig(root.Config)
	if err != nil {
		return err
	}
	overrideInventory(cfg, i.Inventory)
	configureLogging(cfg, root.Verbose)

	ctx, stop := signalContext()
	defer stop()
	return RunInspect(ctx, g.Out, cfg, i.Format)
}

// RunInspect prints the records the build would render, in inventory order.
func RunInspect(ctx context.Context, out io.Writer, cfg *config.Config, format string) error {
	records, err := site.NewGenerator(cfg).Inspect(ctx)
	if err != nil {
		return err
	}
	if format == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if records == nil {
			records = []vehicle.Record{}
		}
		return enc.Encode(records)
	}
	return printRecords(out, records)
}

func printRecords(out io.Writer, records []vehicle.Record) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "NAME\tPRICE\tYEAR\tMILEAGE\tBODY\tFUEL\tSTATUS\tIMAGES\tSLUG")
	for i := range records {
		r := &records[i]
		status := "available"
		if r.Sold {
			status = "sold"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			r.Name, r.Price, r.Year, r.Mileage, r.BodyType, r.Fuel, status, len(r.Images), r.Slug)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "%d vehicle(s)\n", len(records))
	return err
}

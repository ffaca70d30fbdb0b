// Command dispatchctl is the operator's shell companion to the server: it
// seeds demo data and prints the dashboard, order lists and loading slips
// straight from the configured database.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"go-glass-dispatch/internal/config"
	"go-glass-dispatch/internal/database"
	"go-glass-dispatch/internal/models"
	"go-glass-dispatch/internal/reports"
	"go-glass-dispatch/internal/store"
	"go-glass-dispatch/internal/workflow"

	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"
)

func main() {
	var (
		seed      = flag.Bool("seed", false, "load the demo users, orders and slips")
		dashboard = flag.Bool("dashboard", false, "print order and slip counts")
		orders    = flag.String("orders", "", "list orders; pass a status or \"all\"")
		slips     = flag.String("slips", "", "list loading slips; pass a status or \"all\"")
		slip      = flag.String("slip", "", "print the manifest of one loading slip")
		export    = flag.String("export", "", "write orders.xlsx and slips.xlsx with this file prefix")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: No .env file found")
	}
	cfg := config.FromEnv()

	stores, err := database.OpenStores(cfg)
	if err != nil {
		log.Fatalf("failed to open storage: %v", err)
	}
	if cfg.DBDriver == config.DriverMemory && !*seed {
		log.Println("memory storage starts empty; add -seed to work with demo data")
	}

	ctx := context.Background()
	if err := run(ctx, os.Stdout, stores, options{
		seed: *seed, dashboard: *dashboard, orders: *orders, slips: *slips, slip: *slip, export: *export,
	}); err != nil {
		log.Fatal(err)
	}
}

type options struct {
	seed      bool
	dashboard bool
	orders    string
	slips     string
	slip      string
	export    string
}

func run(ctx context.Context, w io.Writer, stores store.Stores, opts options) error {
	svc := workflow.NewService(stores)

	if opts.seed {
		if err := database.Seed(ctx, stores); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}
	if opts.dashboard {
		d, err := reports.BuildDashboard(ctx, stores.Orders, stores.Slips)
		if err != nil {
			return fmt.Errorf("dashboard: %w", err)
		}
		if err := printDashboard(w, d); err != nil {
			return err
		}
	}
	if opts.orders != "" {
		list, err := svc.ListOrders(ctx, models.OrderStatus(allOrStatus(opts.orders)))
		if err != nil {
			return fmt.Errorf("orders: %w", err)
		}
		if err := printOrders(w, list); err != nil {
			return err
		}
	}
	if opts.slips != "" {
		list, err := svc.ListSlips(ctx, models.SlipStatus(allOrStatus(opts.slips)))
		if err != nil {
			return fmt.Errorf("slips: %w", err)
		}
		if err := printSlips(w, list); err != nil {
			return err
		}
	}
	if opts.slip != "" {
		if err := svc.PrintSlip(ctx, opts.slip, w); err != nil {
			return fmt.Errorf("slip %s: %w", opts.slip, err)
		}
	}
	if opts.export != "" {
		if err := exportAll(ctx, svc, opts.export); err != nil {
			return fmt.Errorf("export: %w", err)
		}
	}
	return nil
}

func allOrStatus(v string) string {
	if v == "all" {
		return ""
	}
	return v
}

func printDashboard(w io.Writer, d reports.Dashboard) error {
	fmt.Fprintf(w, "Orders: %d   Value: %s   Slips: %d\n", d.TotalOrders, d.TotalAmount.StringFixed(2), d.TotalSlips)

	table := tablewriter.NewWriter(w)
	table.Header("Kind", "Status", "Count")
	for _, st := range models.OrderStatuses {
		if err := table.Append([]string{"order", string(st), strconv.Itoa(d.OrderCounts[st])}); err != nil {
			return err
		}
	}
	for _, st := range models.SlipStatuses {
		if err := table.Append([]string{"slip", string(st), strconv.Itoa(d.SlipCounts[st])}); err != nil {
			return err
		}
	}
	return table.Render()
}

func printOrders(w io.Writer, orders []models.Order) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Date", "Customer", "Lines", "Total", "Status")
	for _, o := range orders {
		err := table.Append([]string{
			o.ID, o.Date, o.CustomerName, strconv.Itoa(len(o.Items)), o.TotalAmount.StringFixed(2), string(o.Status),
		})
		if err != nil {
			return err
		}
	}
	return table.Render()
}

func printSlips(w io.Writer, slips []models.LoadingSlip) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Date", "Vehicle", "Orders", "Lines", "Invoice", "Status")
	for _, s := range slips {
		err := table.Append([]string{
			s.ID, s.Date, s.VehicleNo, strconv.Itoa(len(s.Groups)), strconv.Itoa(s.ItemCount()), s.InvoiceNo, string(s.Status),
		})
		if err != nil {
			return err
		}
	}
	return table.Render()
}

func exportAll(ctx context.Context, svc *workflow.Service, prefix string) error {
	orders, err := svc.ListOrders(ctx, "")
	if err != nil {
		return err
	}
	slips, err := svc.ListSlips(ctx, "")
	if err != nil {
		return err
	}
	if err := writeFile(prefix+"orders.xlsx", func(w io.Writer) error { return reports.ExportOrders(w, orders) }); err != nil {
		return err
	}
	return writeFile(prefix+"slips.xlsx", func(w io.Writer) error { return reports.ExportSlips(w, slips) })
}

func writeFile(name string, fn func(w io.Writer) error) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	log.Printf("✅ Wrote %s", name)
	return f.Close()
}

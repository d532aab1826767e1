package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"

	"github.com/vendalytics/backend-go/internal/analytics/period"
	"github.com/vendalytics/backend-go/internal/cache"
	"github.com/vendalytics/backend-go/internal/config"
	"github.com/vendalytics/backend-go/internal/domain"
	"github.com/vendalytics/backend-go/internal/repository/postgres"
	"github.com/vendalytics/backend-go/internal/service"
)

const cliDateLayout = "2006-01-02"

func reportCommand() *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Print the dashboard summary for a tenant and period as JSON",
		Flags: []cli.Flag{
			newDBURLFlag(),
			newTenantFlag(),
			&cli.StringFlag{Name: "start", Usage: "Period start (YYYY-MM-DD)", Required: true},
			&cli.StringFlag{Name: "end", Usage: "Period end (YYYY-MM-DD)", Required: true},
			&cli.StringFlag{Name: "customer", Usage: "Restrict to one customer"},
			&cli.StringFlag{Name: "product", Usage: "Restrict to one product"},
			&cli.StringFlag{Name: "out", Usage: "Write JSON to a file instead of stdout"},
		},
		Action: runReport,
	}
}

func runReport(c *cli.Context) error {
	summary, err := computeSummary(c)
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, payload, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		return nil
	}

	fmt.Println(string(payload))
	return nil
}

// computeSummary opens a pgx-backed connection and runs the same assembly
// the HTTP dashboard endpoint uses.
func computeSummary(c *cli.Context) (*domain.DashboardSummary, error) {
	db, err := sqlx.Connect("pgx", c.String("db-url"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	filter, err := parseCLIFilter(c)
	if err != nil {
		return nil, err
	}

	repo := postgres.NewSaleRepository(postgres.WrapDB(db))
	svc := service.NewAnalyticsService(repo, cache.NewNoopSummaryCache(), config.Load().Analytics)
	return svc.DashboardSummary(c.Context, filter)
}

func parseCLIFilter(c *cli.Context) (domain.ReportFilter, error) {
	start, err := time.Parse(cliDateLayout, c.String("start"))
	if err != nil {
		return domain.ReportFilter{}, fmt.Errorf("invalid start date: %w", err)
	}
	end, err := time.Parse(cliDateLayout, c.String("end"))
	if err != nil {
		return domain.ReportFilter{}, fmt.Errorf("invalid end date: %w", err)
	}

	return domain.ReportFilter{
		Tenant:   c.String("tenant"),
		Start:    period.StartOfDay(start),
		End:      period.EndOfDay(end),
		Customer: c.String("customer"),
		Product:  c.String("product"),
	}, nil
}

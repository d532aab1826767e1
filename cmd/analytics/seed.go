package main

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v2"

	"github.com/vendalytics/backend-go/internal/domain"
	"github.com/vendalytics/backend-go/internal/repository/postgres"
)

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Replace a tenant's dataset with generated demo sales",
		Flags: []cli.Flag{
			newDBURLFlag(),
			newTenantFlag(),
			&cli.IntFlag{Name: "months", Usage: "How many months of history to generate", Value: 12},
			&cli.IntFlag{Name: "customers", Usage: "How many demo customers", Value: 40},
			&cli.Int64Flag{Name: "rng-seed", Usage: "Seed for deterministic output", Value: 1},
		},
		Action: runSeed,
	}
}

var (
	demoProducts = []string{
		"Refrigerante 2L", "Refrigerante Lata", "Suco 1L", "Água Mineral 500ml",
		"Energético", "Chá Gelado", "Cerveja Long Neck", "Isotônico",
	}
	demoTypes = []string{"varejo", "atacado", "distribuidor", ""}
)

func runSeed(c *cli.Context) error {
	db, err := sqlx.Connect("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	tenant := c.String("tenant")
	rows := generateDemoRows(c.Int("months"), c.Int("customers"), c.Int64("rng-seed"))

	repo := postgres.NewSaleRepository(postgres.WrapDB(db))
	if err := repo.ReplaceSales(c.Context, tenant, rows); err != nil {
		return fmt.Errorf("failed to store demo rows: %w", err)
	}

	log.Printf("Seeded %d rows for tenant %s", len(rows), tenant)
	return nil
}

// generateDemoRows builds a plausible purchase history: each customer gets a
// first-purchase month, a purchase frequency and a ticket range, so the
// engagement and cohort views have something to show.
func generateDemoRows(months, customers int, seed int64) []domain.SaleRecord {
	rng := rand.New(rand.NewSource(seed))
	end := time.Now().UTC().Truncate(24 * time.Hour)
	start := end.AddDate(0, -months, 0)

	rows := make([]domain.SaleRecord, 0, customers*months)
	for i := 0; i < customers; i++ {
		customer := fmt.Sprintf("Cliente Demo %03d", i+1)
		customerType := demoTypes[rng.Intn(len(demoTypes))]

		firstOffset := rng.Intn(months)
		buyChance := 0.3 + rng.Float64()*0.6
		baseTicket := 200 + rng.Float64()*1800

		for m := firstOffset; m < months; m++ {
			if rng.Float64() > buyChance {
				continue
			}
			purchases := 1 + rng.Intn(3)
			for p := 0; p < purchases; p++ {
				day := rng.Intn(28)
				date := start.AddDate(0, m, day)
				if date.After(end) {
					continue
				}

				quantity := float64(1 + rng.Intn(50))
				revenue := baseTicket * (0.5 + rng.Float64())
				row := domain.SaleRecord{
					Date:         date,
					Customer:     customer,
					Product:      demoProducts[rng.Intn(len(demoProducts))],
					CustomerType: customerType,
					Quantity:     quantity,
					Packages:     float64(rng.Intn(10)),
					Boxes:        float64(rng.Intn(5)),
					Revenue:      revenue,
				}
				if rng.Float64() < 0.8 {
					row.Cost = revenue * (0.4 + rng.Float64()*0.3)
					row.HasCost = true
				}
				rows = append(rows, row)
			}
		}
	}
	return rows
}

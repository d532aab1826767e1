package main

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/vendalytics/backend-go/internal/config"
	"github.com/vendalytics/backend-go/internal/storage"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Compute the dashboard summary and upload it to object storage",
		Flags: []cli.Flag{
			newDBURLFlag(),
			newTenantFlag(),
			&cli.StringFlag{Name: "start", Usage: "Period start (YYYY-MM-DD)", Required: true},
			&cli.StringFlag{Name: "end", Usage: "Period end (YYYY-MM-DD)", Required: true},
			&cli.StringFlag{Name: "customer", Usage: "Restrict to one customer"},
			&cli.StringFlag{Name: "product", Usage: "Restrict to one product"},
		},
		Action: runExport,
	}
}

func runExport(c *cli.Context) error {
	summary, err := computeSummary(c)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	cfg := config.Load()
	client, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to connect to object storage: %w", err)
	}
	if err := client.EnsureBucket(c.Context); err != nil {
		return err
	}

	key := fmt.Sprintf("%s/summary-%s-%s-%s.json",
		c.String("tenant"), c.String("start"), c.String("end"),
		time.Now().UTC().Format("20060102T150405"))
	if err := client.UploadObject(c.Context, key, "application/json", payload); err != nil {
		return err
	}

	log.Printf("Uploaded report to %s (%d bytes)", key, len(payload))
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"caredraft/internal/config"
	"caredraft/internal/database"
	"caredraft/internal/repository"
	"caredraft/internal/services"
)

// One-shot deadline run for external schedulers: cron invokes this binary
// at least once per hour instead of (or in addition to) the in-process job.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	repo := repository.NewRepository(database.GetDB())
	workflowService := services.NewWorkflowService(repo)
	notificationService := services.NewNotificationService(repo)
	deadlineService := services.NewDeadlineService()
	processor := services.NewDeadlineProcessor(repo, deadlineService, workflowService, notificationService)

	report, err := processor.ProcessAll(context.Background())
	if err != nil {
		log.Fatalf("Deadline run failed: %v", err)
	}

	// Per-proposal errors are part of the report, not a run failure
	encoded, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode report: %v", err)
	}

	os.Stdout.Write(encoded)
	os.Stdout.Write([]byte("\n"))
}

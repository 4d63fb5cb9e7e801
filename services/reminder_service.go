package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"

	"github.com/hoevejo/hoeve-Family-picks/internal/types/config"
	"github.com/hoevejo/hoeve-Family-picks/internal/types/job"
)

// ReminderService broadcasts the pre-deadline "get your picks in" push.
type ReminderService struct {
	db       *firestore.Client
	notifier Notifier
	eastern  *time.Location
}

func NewReminderService(db *firestore.Client, notifier Notifier) *ReminderService {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return &ReminderService{db: db, notifier: notifier, eastern: loc}
}

// SendPredictionReminder reads the configured deadline and pushes a reminder
// to every subscriber.
func (s *ReminderService) SendPredictionReminder(ctx context.Context) (*job.Result, error) {
	snap, err := s.db.Collection("config").Doc("config").Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("config not found: %w", err)
	}
	var cfg config.Config
	if err := snap.DataTo(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Deadline.IsZero() {
		return nil, fmt.Errorf("config: deadline is not set")
	}

	formatted := cfg.Deadline.In(s.eastern).Format("3:04 PM")
	title := "Last Chance!"
	body := fmt.Sprintf("Get your predictions in for %s Week %d before %s ET.", cfg.Season(), cfg.Week, formatted)

	if err := s.notifier.Broadcast(ctx, title, body, map[string]any{"week": cfg.Week}); err != nil {
		return nil, err
	}

	log.Println("Sent prediction reminder.")
	return &job.Result{Success: true, Week: cfg.Week}, nil
}

package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/VitaliyFgiol/Bot/internal/models"
)

type ReminderSource interface {
	PendingReminders(topics []string) ([]models.Reminder, error)
}

// ReminderService periodically nudges users about catalog topics they have
// not taken a quiz for. Each sweep queries the store fresh; no reminder
// state is kept across sweeps. A sent reminder deletes itself after
// deleteAfter.
type ReminderService struct {
	transport   Transport
	source      ReminderSource
	topics      []string
	interval    time.Duration
	deleteAfter time.Duration
}

func NewReminderService(transport Transport, source ReminderSource, topics []string, interval time.Duration) *ReminderService {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &ReminderService{
		transport:   transport,
		source:      source,
		topics:      topics,
		interval:    interval,
		deleteAfter: 24 * time.Hour,
	}
}

// Run sweeps on the fixed interval until ctx is cancelled. The first sweep
// happens one interval after start, matching the store being empty on a
// fresh deployment.
func (s *ReminderService) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *ReminderService) sweep(ctx context.Context) {
	reminders, err := s.source.PendingReminders(s.topics)
	if err != nil {
		log.Printf("[REMINDER] sweep failed: %v", err)
		return
	}

	for _, r := range reminders {
		msgID, err := s.transport.SendMessage(ctx, r.ChatID,
			fmt.Sprintf("Не забудьте пройти тест по теме: %s", r.Topic), nil)
		if err != nil {
			log.Printf("[REMINDER] send to %d failed: %v", r.ChatID, err)
			continue
		}
		s.scheduleDeletion(r.ChatID, msgID)
	}
}

func (s *ReminderService) scheduleDeletion(chatID int64, messageID int) {
	time.AfterFunc(s.deleteAfter, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.transport.DeleteMessage(ctx, chatID, messageID); err != nil {
			log.Printf("[REMINDER] delete %d in chat %d failed: %v", messageID, chatID, err)
		}
	})
}

// Package scheduler
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/campushq/campus-hub/config"
	"github.com/campushq/campus-hub/models"
	"github.com/campushq/campus-hub/repository"
	"github.com/campushq/campus-hub/utils"
)

// EventReminderScheduler periodically finds events starting soon and emails attending members
type EventReminderScheduler struct {
	eventRepo repository.EventRepository
	notifier  EmailSender
	logger    *log.Logger
	interval  time.Duration
	window    time.Duration

	logFile *os.File
}

// EmailSender is a minimal interface extracted from NotificationService for email
// This keeps the scheduler independent and easy to test
type EmailSender interface {
	SendEmail(email, subject, message string) error
}

func NewEventReminderScheduler(
	eventRepo repository.EventRepository,
	notifier EmailSender,
	cfg config.SchedulerConfig,
) *EventReminderScheduler {
	interval := cfg.EventReminderInterval
	if interval <= 0 {
		interval = time.Minute
	}
	window := cfg.EventReminderWindow
	if window <= 0 {
		window = 24 * time.Hour
	}

	s := &EventReminderScheduler{
		eventRepo: eventRepo,
		notifier:  notifier,
		interval:  interval,
		window:    window,
	}

	// Initialize scheduler-specific logger (to stdout and persistent file)
	if err := s.initSchedulerLogger(); err != nil {
		// Fallback to default stdout logger if file logger init fails
		s.logger = log.Default()
		s.logger.Printf("scheduler: failed to initialize file logger: %v", err)
	}

	return s
}

// initSchedulerLogger configures a logger that writes to both stdout and a persistent file under data/ (or /data)
func (s *EventReminderScheduler) initSchedulerLogger() error {
	// Prefer relative data/ then fallback to /data for containerized environments
	candidates := []string{
		filepath.Join("data"),
		"/data",
	}
	for _, dir := range candidates {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			continue
		}
		logPath := filepath.Join(dir, "scheduler.log")
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			continue
		}
		// Success
		s.logFile = f
		mw := io.MultiWriter(os.Stdout, f)
		// log.Logger is goroutine-safe; include timestamps with microseconds and UTC
		s.logger = log.New(mw, "scheduler ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
		return nil
	}
	return fmt.Errorf("could not create scheduler log file in any candidate directory")
}

// Start launches the scheduler loop in a background goroutine and returns a stop function
func (s *EventReminderScheduler) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (s *EventReminderScheduler) runOnce(ctx context.Context) {
	now := utils.UTCNow()
	due, err := s.eventRepo.ListDueForReminder(ctx, now, now.Add(s.window))
	if err != nil {
		s.logger.Printf("scheduler: list due events failed: %v", err)
		return
	}
	if len(due) == 0 {
		return
	}
	s.logger.Printf("scheduler: %d events due for reminders", len(due))

	for _, event := range due {
		if err := s.remindEvent(ctx, event); err != nil {
			s.logger.Printf("scheduler: remind event id=%d failed: %v", event.ID, err)
		}
	}
}

func (s *EventReminderScheduler) remindEvent(ctx context.Context, event *models.Event) error {
	rsvps, err := s.eventRepo.ListRSVPs(ctx, event.ID, models.RSVPStatusGoing)
	if err != nil {
		return fmt.Errorf("list going rsvps: %w", err)
	}

	subject, body := s.buildReminder(event)

	sent := 0
	for _, rsvp := range rsvps {
		if rsvp == nil || rsvp.Member.Email == "" {
			continue
		}
		if err := s.notifier.SendEmail(rsvp.Member.Email, subject, body); err != nil {
			s.logger.Printf("scheduler: send reminder failed event_id=%d member_id=%d: %v", event.ID, rsvp.MemberID, err)
			continue
		}
		sent++
	}

	// Stamp even when zero emails went out so the event is not retried forever
	if err := s.eventRepo.MarkRemindersSent(ctx, event.ID, utils.UTCNow()); err != nil {
		return fmt.Errorf("mark reminders sent: %w", err)
	}

	s.logger.Printf("scheduler: event id=%d reminders sent=%d attendees=%d", event.ID, sent, len(rsvps))
	return nil
}

func (s *EventReminderScheduler) buildReminder(event *models.Event) (string, string) {
	subject := fmt.Sprintf("Reminder: %s starts soon", event.Title)

	body := fmt.Sprintf("%s is starting at %s UTC.", event.Title, event.StartsAt.Format("Mon, 02 Jan 2006 15:04"))
	if event.Location != nil && *event.Location != "" {
		body += fmt.Sprintf(" Location: %s.", *event.Location)
	}
	if event.Club.Name != "" {
		body += fmt.Sprintf(" Hosted by %s.", event.Club.Name)
	}
	return subject, body
}

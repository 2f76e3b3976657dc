// Package remind posts the daily standup-upload reminder on a schedule.
package remind

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Sink receives the reminder message.
type Sink interface {
	PostReminder(ctx context.Context, uploadLink string) error
}

// Scheduler fires the reminder once per day at the configured meeting end
// time. The time can be changed at runtime via Reschedule.
type Scheduler struct {
	sink       Sink
	uploadLink string

	mu      sync.Mutex
	cron    *cron.Cron
	entryID cron.EntryID
	active  bool
}

func New(sink Sink, uploadLink string) *Scheduler {
	return &Scheduler{
		sink:       sink,
		uploadLink: uploadLink,
		cron:       cron.New(),
	}
}

// Start schedules the daily reminder at the given "HH:MM" wall-clock time
// and begins running the schedule.
func (s *Scheduler) Start(meetingEndTime string) error {
	if err := s.Reschedule(meetingEndTime); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Reschedule moves the daily reminder to a new "HH:MM" time, replacing any
// existing entry.
func (s *Scheduler) Reschedule(meetingEndTime string) error {
	spec, err := cronSpec(meetingEndTime)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		s.cron.Remove(s.entryID)
		s.active = false
	}

	entryID, err := s.cron.AddFunc(spec, s.fire)
	if err != nil {
		return fmt.Errorf("schedule reminder: %w", err)
	}
	s.entryID = entryID
	s.active = true

	log.Printf("daily reminder scheduled at %s", meetingEndTime)
	return nil
}

// Stop halts the schedule. Pending reminder runs complete.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.sink.PostReminder(ctx, s.uploadLink); err != nil {
		log.Printf("daily reminder failed: %v", err)
		return
	}
	log.Printf("daily reminder sent")
}

// cronSpec converts an "HH:MM" wall-clock time into a daily cron spec.
func cronSpec(meetingEndTime string) (string, error) {
	t, err := time.Parse("15:04", meetingEndTime)
	if err != nil {
		return "", fmt.Errorf("invalid meeting end time %q: expected HH:MM", meetingEndTime)
	}
	return fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour()), nil
}

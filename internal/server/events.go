package server

import "time"

const EventVersion = 1

type Event struct {
	Type      string `json:"type"`
	Version   int    `json:"version"`
	Timestamp string `json:"timestamp"`
}

type ReportReceivedEvent struct {
	Event
	ReportID int64  `json:"report_id"`
	Source   string `json:"source"`
	Filename string `json:"filename"`
}

type ReportCompletedEvent struct {
	Event
	ReportID int64  `json:"report_id"`
	Summary  string `json:"summary"`
}

type ReportFailedEvent struct {
	Event
	ReportID int64  `json:"report_id"`
	Error    string `json:"error"`
}

type ReportDeliveredEvent struct {
	Event
	ReportID int64  `json:"report_id"`
	Status   string `json:"status"`
	SlackTS  string `json:"slack_ts"`
}

type ReminderSentEvent struct {
	Event
	UploadLink string `json:"upload_link"`
}

type ConnectionEvent struct {
	Event
	Connected bool `json:"connected"`
}

func newEvent(eventType string, now time.Time) Event {
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return Event{
		Type:      eventType,
		Version:   EventVersion,
		Timestamp: now.UTC().Format(time.RFC3339Nano),
	}
}

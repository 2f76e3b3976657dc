package server

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

type Hub struct {
	mu      sync.RWMutex
	clients map[chan []byte]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan []byte]struct{})}
}

func (h *Hub) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	h.mu.Lock()
	h.clients[ch] = struct{}{}
	h.mu.Unlock()
	return ch
}

func (h *Hub) Unsubscribe(ch chan []byte) {
	h.mu.Lock()
	delete(h.clients, ch)
	h.mu.Unlock()
	close(ch)
}

func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.clients {
		select {
		case ch <- msg:
		default:
		}
	}
}

func (h *Hub) BroadcastReportReceived(reportID int64, source, filename string) {
	h.broadcastEvent(ReportReceivedEvent{
		Event:    newEvent("report_received", time.Now().UTC()),
		ReportID: reportID,
		Source:   source,
		Filename: filename,
	})
}

func (h *Hub) BroadcastReportCompleted(reportID int64, summary string) {
	h.broadcastEvent(ReportCompletedEvent{
		Event:    newEvent("report_completed", time.Now().UTC()),
		ReportID: reportID,
		Summary:  summary,
	})
}

func (h *Hub) BroadcastReportFailed(reportID int64, cause string) {
	h.broadcastEvent(ReportFailedEvent{
		Event:    newEvent("report_failed", time.Now().UTC()),
		ReportID: reportID,
		Error:    cause,
	})
}

func (h *Hub) BroadcastReportDelivered(reportID int64, status, slackTS string) {
	h.broadcastEvent(ReportDeliveredEvent{
		Event:    newEvent("report_delivered", time.Now().UTC()),
		ReportID: reportID,
		Status:   status,
		SlackTS:  slackTS,
	})
}

func (h *Hub) BroadcastReminderSent(uploadLink string) {
	h.broadcastEvent(ReminderSentEvent{
		Event:      newEvent("reminder_sent", time.Now().UTC()),
		UploadLink: uploadLink,
	})
}

func (h *Hub) broadcastEvent(event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("event marshal error: %v", err)
		return
	}
	h.Broadcast(payload)
}

// Package report orchestrates one upload end to end: extract a transcript
// from whatever was uploaded, run the standup pipeline or the digest
// formatter, persist the result, and deliver it to Slack.
package report

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/sindhupr11/clover-backend/internal/docx"
	"github.com/sindhupr11/clover-backend/internal/storage"
)

const (
	SourceMedia      = "media"
	SourceTranscript = "transcript"
)

var audioExts = map[string]bool{".mp3": true, ".wav": true, ".m4a": true}
var videoExts = map[string]bool{".mp4": true, ".mkv": true, ".webm": true}

// Manager runs uploads through the processing pipeline. Each upload is
// independent; concurrent uploads share no mutable state beyond the store.
type Manager struct {
	store       Store
	transcriber Transcriber
	extractor   AudioExtractor
	summarizer  Summarizer
	digester    Digester
	sink        Sink
	hub         EventBroadcaster
	mediaDir    string

	deliveries sync.WaitGroup
}

func NewManager(store Store, transcriber Transcriber, extractor AudioExtractor, summarizer Summarizer, digester Digester, sink Sink, hub EventBroadcaster, mediaDir string) *Manager {
	return &Manager{
		store:       store,
		transcriber: transcriber,
		extractor:   extractor,
		summarizer:  summarizer,
		digester:    digester,
		sink:        sink,
		hub:         hub,
		mediaDir:    mediaDir,
	}
}

// ProcessMedia handles an upload_media request: route the file by
// extension to transcript text, run attribution, and deliver the result.
// The returned report reflects processing; delivery completes
// asynchronously.
func (m *Manager) ProcessMedia(ctx context.Context, filename, path string) (storage.Report, error) {
	id, err := m.begin(SourceMedia, filename)
	if err != nil {
		return storage.Report{}, err
	}

	transcript, err := m.extractTranscript(ctx, filename, path)
	if err != nil {
		return m.fail(ctx, id, err)
	}

	summary, err := m.summarizer.Process(ctx, transcript)
	if err != nil {
		return m.fail(ctx, id, err)
	}

	return m.complete(id, transcript, summary)
}

// ProcessDocument handles an upload-transcript request: extract the docx
// text and run it through the digest formatter.
func (m *Manager) ProcessDocument(ctx context.Context, filename string, data []byte) (storage.Report, error) {
	id, err := m.begin(SourceTranscript, filename)
	if err != nil {
		return storage.Report{}, err
	}

	text, err := docx.ExtractText(data)
	if err != nil {
		return m.fail(ctx, id, fmt.Errorf("read docx file: %w", err))
	}

	summary, err := m.digester.Format(ctx, text)
	if err != nil {
		return m.fail(ctx, id, err)
	}

	return m.complete(id, text, summary)
}

// Wait blocks until in-flight deliveries finish. Used during shutdown.
func (m *Manager) Wait() {
	m.deliveries.Wait()
}

func (m *Manager) begin(source, filename string) (int64, error) {
	id, err := m.store.CreateReport(source, filename, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("create report: %w", err)
	}
	if m.hub != nil {
		m.hub.BroadcastReportReceived(id, source, filename)
	}
	return id, nil
}

func (m *Manager) extractTranscript(ctx context.Context, filename, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch {
	case ext == ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read transcript file: %w", err)
		}
		return string(data), nil

	case ext == ".docx":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read docx file: %w", err)
		}
		return docx.ExtractText(data)

	case audioExts[ext]:
		return m.transcriber.Transcribe(ctx, path)

	case videoExts[ext]:
		audioPath, err := m.extractor(ctx, path, m.mediaDir)
		if err != nil {
			return "", err
		}
		defer func() { _ = os.Remove(audioPath) }()
		return m.transcriber.Transcribe(ctx, audioPath)

	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

func (m *Manager) complete(id int64, transcript, summary string) (storage.Report, error) {
	if err := m.store.CompleteReport(id, transcript, summary); err != nil {
		return storage.Report{}, fmt.Errorf("complete report %d: %w", id, err)
	}
	if m.hub != nil {
		m.hub.BroadcastReportCompleted(id, summary)
	}

	m.deliver(id, summary)

	return m.store.GetReport(id)
}

// fail records the failure, notifies the channel, and returns the original
// error to the caller. A failed report never produces a partial summary.
func (m *Manager) fail(ctx context.Context, id int64, cause error) (storage.Report, error) {
	if err := m.store.FailReport(id, cause.Error()); err != nil {
		log.Printf("record report %d failure: %v", id, err)
	}
	if m.hub != nil {
		m.hub.BroadcastReportFailed(id, cause.Error())
	}

	if m.sink != nil && m.sink.Configured() {
		if err := m.sink.PostError(ctx, cause.Error()); err != nil {
			log.Printf("post error notice for report %d: %v", id, err)
		}
	}

	return storage.Report{}, cause
}

// deliver posts the summary to Slack in the background. Delivery failures
// are recorded as status and never roll back the completed report.
func (m *Manager) deliver(id int64, summary string) {
	if m.sink == nil || !m.sink.Configured() {
		if err := m.store.UpdateDelivery(id, storage.DeliverySkipped, "slack not configured", ""); err != nil {
			log.Printf("record skipped delivery for report %d: %v", id, err)
		}
		return
	}

	m.deliveries.Add(1)
	go func() {
		defer m.deliveries.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		ts, err := m.sink.PostReport(ctx, summary)
		status := storage.DeliverySent
		deliveryError := ""
		if err != nil {
			status = storage.DeliveryFailed
			deliveryError = err.Error()
			log.Printf("deliver report %d: %v", id, err)
		}

		if err := m.store.UpdateDelivery(id, status, deliveryError, ts); err != nil {
			log.Printf("record delivery for report %d: %v", id, err)
		}
		if m.hub != nil {
			m.hub.BroadcastReportDelivered(id, status, ts)
		}
	}()
}

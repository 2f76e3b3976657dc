package report

import (
	"context"
	"time"

	"github.com/sindhupr11/clover-backend/internal/storage"
)

// Store persists reports and their delivery outcomes.
type Store interface {
	CreateReport(source, filename string, createdAt time.Time) (int64, error)
	CompleteReport(id int64, transcript, summary string) error
	FailReport(id int64, cause string) error
	UpdateDelivery(id int64, status, deliveryError, slackTS string) error
	GetReport(id int64) (storage.Report, error)
}

// Transcriber converts an audio file into transcript text.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (string, error)
}

// AudioExtractor pulls the audio track out of a video file.
type AudioExtractor func(ctx context.Context, inputPath, tmpDir string) (string, error)

// Summarizer turns a raw transcript into the formatted standup report.
type Summarizer interface {
	Process(ctx context.Context, transcript string) (string, error)
}

// Digester formats a pre-written standup document.
type Digester interface {
	Format(ctx context.Context, text string) (string, error)
}

// Sink delivers reports and error notices to the team channel.
type Sink interface {
	PostReport(ctx context.Context, summary string) (string, error)
	PostError(ctx context.Context, cause string) error
	Configured() bool
}

// EventBroadcaster pushes processing progress to connected clients.
type EventBroadcaster interface {
	BroadcastReportReceived(id int64, source, filename string)
	BroadcastReportCompleted(id int64, summary string)
	BroadcastReportFailed(id int64, cause string)
	BroadcastReportDelivered(id int64, status, slackTS string)
}

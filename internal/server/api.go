package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sindhupr11/clover-backend/internal/storage"
)

// maxUploadBytes caps a single upload. Standup recordings are short; a
// half-gigabyte limit leaves plenty of headroom for video.
const maxUploadBytes = 512 << 20

const (
	SettingSlackBotToken  = "slack_bot_token"
	SettingSlackChannelID = "slack_channel_id"
	SettingMeetingEndTime = "meeting_end_time"
)

type ReportStore interface {
	GetReport(id int64) (storage.Report, error)
	GetReportsByDate(date string) ([]storage.Report, error)
	GetDates() ([]string, error)
	SetSetting(key, value string) error
	GetSettings() (map[string]string, error)
}

type Processor interface {
	ProcessMedia(ctx context.Context, filename, path string) (storage.Report, error)
	ProcessDocument(ctx context.Context, filename string, data []byte) (storage.Report, error)
}

// SettingsHooks apply settings changes to the running components.
type SettingsHooks struct {
	UpdateSlack     func(botToken, channelID string)
	Reschedule      func(meetingEndTime string) error
	SlackConfigured func() bool
}

type settingsRequest struct {
	SlackBotToken  string `json:"slack_bot_token"`
	SlackChannelID string `json:"slack_channel_id"`
	MeetingEndTime string `json:"meeting_end_time"`
}

func registerAPIRoutes(mux *http.ServeMux, store ReportStore, processor Processor, hooks SettingsHooks, mediaDir string) {
	mux.HandleFunc("POST /api/upload-media", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer func() { _ = file.Close() }()

		path, err := saveUpload(file, header.Filename, mediaDir)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("save upload: %v", err))
			return
		}

		report, err := processor.ProcessMedia(r.Context(), header.Filename, path)
		if err != nil {
			writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, report)
	})

	mux.HandleFunc("POST /api/upload-transcript", func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		file, header, err := r.FormFile("file")
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "missing file field")
			return
		}
		defer func() { _ = file.Close() }()

		if !strings.EqualFold(filepath.Ext(header.Filename), ".docx") {
			writeJSONError(w, http.StatusBadRequest, "expected a .docx file")
			return
		}

		data, err := io.ReadAll(file)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("read upload: %v", err))
			return
		}

		report, err := processor.ProcessDocument(r.Context(), header.Filename, data)
		if err != nil {
			writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		writeJSON(w, http.StatusOK, report)
	})

	mux.HandleFunc("GET /api/reports", func(w http.ResponseWriter, r *http.Request) {
		date := r.URL.Query().Get("date")
		if date == "" {
			date = time.Now().UTC().Format("2006-01-02")
		}

		reports, err := store.GetReportsByDate(date)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("list reports: %v", err))
			return
		}
		if reports == nil {
			reports = []storage.Report{}
		}

		writeJSON(w, http.StatusOK, reports)
	})

	mux.HandleFunc("GET /api/reports/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid report id")
			return
		}

		report, err := store.GetReport(id)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, sql.ErrNoRows) {
				status = http.StatusNotFound
			}
			writeJSONError(w, status, fmt.Sprintf("get report: %v", err))
			return
		}

		writeJSON(w, http.StatusOK, report)
	})

	mux.HandleFunc("GET /api/dates", func(w http.ResponseWriter, r *http.Request) {
		dates, err := store.GetDates()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("get dates: %v", err))
			return
		}
		if dates == nil {
			dates = []string{}
		}
		writeJSON(w, http.StatusOK, dates)
	})

	mux.HandleFunc("GET /api/settings", func(w http.ResponseWriter, r *http.Request) {
		settings, err := store.GetSettings()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("get settings: %v", err))
			return
		}

		if token, ok := settings[SettingSlackBotToken]; ok {
			settings[SettingSlackBotToken] = maskToken(token)
		}

		configured := false
		if hooks.SlackConfigured != nil {
			configured = hooks.SlackConfigured()
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"settings":         settings,
			"slack_configured": configured,
		})
	})

	mux.HandleFunc("POST /api/settings", func(w http.ResponseWriter, r *http.Request) {
		var req settingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid settings payload")
			return
		}

		if req.MeetingEndTime != "" {
			if hooks.Reschedule != nil {
				if err := hooks.Reschedule(req.MeetingEndTime); err != nil {
					writeJSONError(w, http.StatusBadRequest, err.Error())
					return
				}
			}
			if err := store.SetSetting(SettingMeetingEndTime, req.MeetingEndTime); err != nil {
				writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("save setting: %v", err))
				return
			}
		}

		if req.SlackBotToken != "" || req.SlackChannelID != "" {
			if hooks.UpdateSlack != nil {
				hooks.UpdateSlack(req.SlackBotToken, req.SlackChannelID)
			}
			if req.SlackBotToken != "" {
				if err := store.SetSetting(SettingSlackBotToken, req.SlackBotToken); err != nil {
					writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("save setting: %v", err))
					return
				}
			}
			if req.SlackChannelID != "" {
				if err := store.SetSetting(SettingSlackChannelID, req.SlackChannelID); err != nil {
					writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("save setting: %v", err))
					return
				}
			}
		}

		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}

// saveUpload writes the upload under mediaDir with a timestamp prefix so
// repeated uploads of the same filename never collide.
func saveUpload(src io.Reader, filename, mediaDir string) (string, error) {
	if err := os.MkdirAll(mediaDir, 0o755); err != nil {
		return "", fmt.Errorf("create media directory: %w", err)
	}

	name := fmt.Sprintf("%s_%s", time.Now().UTC().Format("20060102T150405"), filepath.Base(filename))
	path := filepath.Join(mediaDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer func() { _ = dst.Close() }()

	if _, err := io.Copy(dst, src); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write media file: %w", err)
	}
	return path, nil
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "********"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

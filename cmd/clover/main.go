package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sindhupr11/clover-backend/internal/config"
	"github.com/sindhupr11/clover-backend/internal/digest"
	"github.com/sindhupr11/clover-backend/internal/gdrive"
	"github.com/sindhupr11/clover-backend/internal/llm"
	"github.com/sindhupr11/clover-backend/internal/media"
	"github.com/sindhupr11/clover-backend/internal/remind"
	"github.com/sindhupr11/clover-backend/internal/report"
	"github.com/sindhupr11/clover-backend/internal/server"
	"github.com/sindhupr11/clover-backend/internal/slack"
	"github.com/sindhupr11/clover-backend/internal/standup"
	"github.com/sindhupr11/clover-backend/internal/storage"
	"github.com/sindhupr11/clover-backend/internal/transcribe"
)

// reminderSink posts the daily reminder and mirrors it to connected
// websocket clients.
type reminderSink struct {
	notifier *slack.Notifier
	hub      *server.Hub
}

func (s reminderSink) PostReminder(ctx context.Context, uploadLink string) error {
	if err := s.notifier.PostReminder(ctx, uploadLink); err != nil {
		return err
	}
	s.hub.BroadcastReminderSent(uploadLink)
	return nil
}

func main() {
	log.Println("clover: starting")

	cfgPath := os.Getenv(config.EnvPrefix + "CONFIG")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, warnings, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	for _, w := range warnings {
		log.Printf("warning: %s", w)
	}

	store, err := storage.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("storage init failed: %v", err)
	}
	defer func() { _ = store.Close() }()

	hub := server.NewHub()

	notifier := slack.New(cfg.SlackBotToken, cfg.SlackChannelID)

	// Settings saved through the API override the boot-time config.
	meetingEndTime := cfg.MeetingEndTime
	if saved, err := store.GetSettings(); err != nil {
		log.Printf("warning: load saved settings failed: %v", err)
	} else {
		if token := saved[server.SettingSlackBotToken]; token != "" {
			notifier.UpdateCredentials(token, saved[server.SettingSlackChannelID])
		}
		if t := saved[server.SettingMeetingEndTime]; t != "" {
			meetingEndTime = t
		}
	}

	oracle := buildOracle(cfg)
	pipeline := standup.New(oracle, standup.WithOracleTimeout(cfg.ParsedOracleTimeout()))

	digester := digest.New(buildCompletionClient(cfg, cfg.DigestModel, digest.ClientOptions()...))

	whisper := transcribe.NewWhisper(cfg.GroqAPIKey, cfg.WhisperModel,
		transcribe.WithBaseURL(llm.GroqBaseURL))

	manager := report.NewManager(store, whisper, media.ExtractAudio, pipeline, digester, notifier, hub, cfg.MediaDir)

	scheduler := remind.New(reminderSink{notifier: notifier, hub: hub}, cfg.UploadLink)
	if err := scheduler.Start(meetingEndTime); err != nil {
		log.Printf("warning: daily reminder disabled: %v", err)
	}
	defer scheduler.Stop()

	handler := server.Handler(hub, store, manager, server.SettingsHooks{
		UpdateSlack:     notifier.UpdateCredentials,
		Reschedule:      scheduler.Reschedule,
		SlackConfigured: notifier.Configured,
	}, cfg.MediaDir)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	httpServer := &http.Server{Addr: cfg.ListenAddr, Handler: handler}
	go func() {
		log.Printf("clover: api on http://%s", cfg.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("http server error: %v", err)
		}
	}()

	if cfg.GDriveFolderID != "" {
		syncer, syncErr := gdrive.NewSyncer(ctx, cfg.GoogleCredentialsFile, cfg.GDriveFolderID)
		if syncErr != nil {
			log.Printf("warning: gdrive sync disabled: %v", syncErr)
		} else {
			go func() {
				ticker := time.NewTicker(5 * time.Minute)
				defer ticker.Stop()
				for {
					select {
					case <-ctx.Done():
						return
					case <-ticker.C:
						date := time.Now().UTC().Format("2006-01-02")
						if err := syncer.Sync(cfg.DBPath, date); err != nil {
							log.Printf("gdrive sync error: %v", err)
						}
					}
				}
			}()
		}
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("clover: shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	manager.Wait()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("warning: http shutdown failed: %v", err)
	}
}

// buildOracle returns the attribution oracle, or nil when the provider's
// API key is not configured. A nil oracle falls back to prompt rules only.
func buildOracle(cfg config.Config) standup.Oracle {
	client := buildCompletionClient(cfg, cfg.OracleModel, llm.WithMaxTokens(standup.OracleMaxTokens))
	if client == nil {
		return nil
	}
	return standup.OracleFunc(func(ctx context.Context, prompt string) (string, error) {
		return llm.Prompt(ctx, client, prompt)
	})
}

func buildCompletionClient(cfg config.Config, model string, opts ...llm.Option) llm.Client {
	provider, modelName, err := llm.ParseModel(model)
	if err != nil {
		log.Printf("warning: %v", err)
		return nil
	}

	key := apiKeyFor(cfg, provider)
	if key == "" {
		log.Printf("warning: no API key for provider %q", provider)
		return nil
	}

	client, err := llm.NewClient(provider, key, modelName, opts...)
	if err != nil {
		log.Printf("warning: %v", err)
		return nil
	}
	return client
}

func apiKeyFor(cfg config.Config, provider string) string {
	switch provider {
	case "groq":
		return cfg.GroqAPIKey
	case "openai":
		return cfg.OpenAIAPIKey
	case "anthropic":
		return cfg.AnthropicAPIKey
	case "gemini":
		return cfg.GeminiAPIKey
	default:
		return ""
	}
}

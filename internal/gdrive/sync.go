// Package gdrive archives the reports database to a Google Drive folder so
// standup history survives the machine the service runs on.
package gdrive

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// driveAPI is the slice of Drive the syncer uses; faked in tests.
type driveAPI interface {
	find(name string) (string, error)
	create(name string, media io.Reader) (string, error)
	update(fileID string, media io.Reader) error
}

// Syncer uploads one archive file per day, updating it in place on
// subsequent syncs within the same day.
type Syncer struct {
	files   driveAPI
	fileIDs map[string]string
	mu      sync.Mutex
}

func NewSyncer(ctx context.Context, credPath, folderID string) (*Syncer, error) {
	creds, err := os.ReadFile(credPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	config, err := google.CredentialsFromJSONWithTypeAndParams(ctx, creds, google.ServiceAccount, google.CredentialsParams{Scopes: []string{drive.DriveFileScope}})
	if err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}

	svc, err := drive.NewService(ctx, option.WithCredentials(config))
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}

	return &Syncer{
		files:   driveFiles{svc: svc, folderID: folderID},
		fileIDs: make(map[string]string),
	}, nil
}

// Sync uploads localPath as the archive for the given date. A cache miss
// checks Drive for an archive already created under the same name, so a
// restart mid-day updates the existing file instead of creating a second
// one.
func (s *Syncer) Sync(localPath, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", localPath, err)
	}
	defer func() { _ = f.Close() }()

	name := fmt.Sprintf("clover-reports-%s", date)

	fileID, cached := s.fileIDs[date]
	if !cached {
		fileID, err = s.files.find(name)
		if err != nil {
			return err
		}
	}

	if fileID != "" {
		if err := s.files.update(fileID, f); err != nil {
			return err
		}
		s.fileIDs[date] = fileID
		return nil
	}

	id, err := s.files.create(name, f)
	if err != nil {
		return err
	}
	s.fileIDs[date] = id
	return nil
}

// driveFiles backs the syncer with the real Drive v3 service.
type driveFiles struct {
	svc      *drive.Service
	folderID string
}

func (d driveFiles) find(name string) (string, error) {
	query := fmt.Sprintf("name = '%s' and '%s' in parents and trashed = false", name, d.folderID)
	list, err := d.svc.Files.List().Q(query).Fields("files(id)").PageSize(1).Do()
	if err != nil {
		return "", fmt.Errorf("drive lookup: %w", err)
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].Id, nil
}

func (d driveFiles) create(name string, media io.Reader) (string, error) {
	doc, err := d.svc.Files.Create(&drive.File{
		Name:     name,
		MimeType: "application/octet-stream",
		Parents:  []string{d.folderID},
	}).Media(media).Do()
	if err != nil {
		return "", fmt.Errorf("drive create: %w", err)
	}
	return doc.Id, nil
}

func (d driveFiles) update(fileID string, media io.Reader) error {
	if _, err := d.svc.Files.Update(fileID, &drive.File{}).Media(media).Do(); err != nil {
		return fmt.Errorf("drive update: %w", err)
	}
	return nil
}

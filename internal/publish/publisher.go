// Package publish distributes the weekly replenishment reports to object
// storage and Google Drive.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/andresuchdata/replenish/internal/drive"
	"github.com/andresuchdata/replenish/internal/storage"
)

const (
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeCSV  = "text/csv"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Artifact is one rendered report file.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// Location is where a publisher stored an artifact.
type Location struct {
	Publisher string    `json:"publisher"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Size      int64     `json:"size,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Publisher stores artifacts somewhere users can reach them.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, a Artifact) (Location, error)
	// List returns what has already been published under the given name prefix.
	List(ctx context.Context, prefix string) ([]Location, error)
}

type objectPublisher struct {
	store  storage.ObjectStorage
	prefix string
}

// NewObjectPublisher publishes into an S3-compatible bucket under prefix.
func NewObjectPublisher(store storage.ObjectStorage, prefix string) Publisher {
	return &objectPublisher{store: store, prefix: strings.Trim(prefix, "/")}
}

func (p *objectPublisher) Name() string { return "storage" }

func (p *objectPublisher) key(name string) string {
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}

func (p *objectPublisher) Publish(ctx context.Context, a Artifact) (Location, error) {
	key := p.key(a.Name)
	if err := p.store.UploadObject(ctx, key, a.Data, a.ContentType); err != nil {
		return Location{}, err
	}
	return Location{
		Publisher: p.Name(),
		Name:      a.Name,
		URL:       p.store.URL(key),
		Size:      int64(len(a.Data)),
	}, nil
}

func (p *objectPublisher) List(ctx context.Context, prefix string) ([]Location, error) {
	objects, err := p.store.ListObjects(ctx, p.key(prefix))
	if err != nil {
		return nil, err
	}
	out := make([]Location, 0, len(objects))
	for _, obj := range objects {
		out = append(out, Location{
			Publisher: p.Name(),
			Name:      strings.TrimPrefix(strings.TrimPrefix(obj.Key, p.prefix), "/"),
			URL:       p.store.URL(obj.Key),
			Size:      obj.Size,
			UpdatedAt: obj.LastModified,
		})
	}
	return out, nil
}

// Open reads back a published object by name.
func (p *objectPublisher) Open(ctx context.Context, name string) ([]byte, error) {
	return p.store.GetObject(ctx, p.key(name))
}

// DriveFiles is the part of the Drive service used for publishing.
type DriveFiles interface {
	ListFiles(ctx context.Context, folderID string) ([]*drive.File, error)
	UploadFile(ctx context.Context, folderID, name, mimeType string, r io.Reader) (*drive.File, error)
	FindFolderByPath(ctx context.Context, path string) (string, error)
}

type drivePublisher struct {
	files  DriveFiles
	folder string

	once     sync.Once
	folderID string
	err      error
}

// NewDrivePublisher uploads into folder, which is either a folder ID or a
// slash separated path resolved on first use.
func NewDrivePublisher(files DriveFiles, folder string) Publisher {
	return &drivePublisher{files: files, folder: strings.TrimSpace(folder)}
}

func (p *drivePublisher) Name() string { return "drive" }

func (p *drivePublisher) resolveFolder(ctx context.Context) (string, error) {
	p.once.Do(func() {
		if !strings.Contains(p.folder, "/") {
			p.folderID = p.folder
			return
		}
		p.folderID, p.err = p.files.FindFolderByPath(ctx, p.folder)
	})
	return p.folderID, p.err
}

func (p *drivePublisher) Publish(ctx context.Context, a Artifact) (Location, error) {
	folderID, err := p.resolveFolder(ctx)
	if err != nil {
		return Location{}, fmt.Errorf("resolve drive folder: %w", err)
	}

	f, err := p.files.UploadFile(ctx, folderID, a.Name, a.ContentType, bytes.NewReader(a.Data))
	if err != nil {
		return Location{}, err
	}
	return Location{
		Publisher: p.Name(),
		Name:      f.Name,
		URL:       f.WebViewLink,
		Size:      int64(len(a.Data)),
	}, nil
}

func (p *drivePublisher) List(ctx context.Context, prefix string) ([]Location, error) {
	folderID, err := p.resolveFolder(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve drive folder: %w", err)
	}

	files, err := p.files.ListFiles(ctx, folderID)
	if err != nil {
		return nil, err
	}

	out := make([]Location, 0, len(files))
	for _, f := range files {
		if !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		loc := Location{Publisher: p.Name(), Name: f.Name, URL: f.WebViewLink, Size: f.Size}
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			loc.UpdatedAt = t
		}
		out = append(out, loc)
	}
	return out, nil
}

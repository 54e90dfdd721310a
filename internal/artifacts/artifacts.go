// Package artifacts archives plan files produced during a run: timestamped
// copies on disk, and optionally a mirror in a blob container so a pipeline
// can pick them up. The byte layout of the plan file itself is owned by the
// provisioning tool.
package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// Archive is a set of related artifacts from one plan step.
type Archive struct {
	PlanPath string
	JSONPath string
}

// Store writes timestamped copies of the binary plan and its JSON rendering
// into dir, creating it if needed. It returns the paths written so an abort
// message can point at them.
func Store(dir, planFile string, planJSON []byte, now time.Time) (Archive, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Archive{}, fmt.Errorf("creating artifact dir: %w", err)
	}

	stamp := now.Format("20060102-150405")
	archive := Archive{
		PlanPath: filepath.Join(dir, fmt.Sprintf("tfplan-%s.bin", stamp)),
		JSONPath: filepath.Join(dir, fmt.Sprintf("tfplan-%s.json", stamp)),
	}

	plan, err := os.ReadFile(planFile)
	if err != nil {
		return Archive{}, fmt.Errorf("reading plan file: %w", err)
	}
	if err := os.WriteFile(archive.PlanPath, plan, 0o600); err != nil {
		return Archive{}, fmt.Errorf("archiving plan: %w", err)
	}
	if err := os.WriteFile(archive.JSONPath, planJSON, 0o600); err != nil {
		return Archive{}, fmt.Errorf("archiving plan json: %w", err)
	}
	return archive, nil
}

// Uploader mirrors archived artifacts to a blob container.
type Uploader struct {
	Container string
	client    *azblob.Client
}

// NewUploader builds an Uploader from a storage connection string.
func NewUploader(connectionString, container string) (*Uploader, error) {
	client, err := azblob.NewClientFromConnectionString(connectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("creating blob client: %w", err)
	}
	return &Uploader{Container: container, client: client}, nil
}

// Upload mirrors both archive files. Blob names keep the local file names so
// runs sort chronologically in the container.
func (u *Uploader) Upload(ctx context.Context, archive Archive) error {
	for _, path := range []string{archive.PlanPath, archive.JSONPath} {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		name := filepath.Base(path)
		if _, err := u.client.UploadBuffer(ctx, u.Container, name, data, nil); err != nil {
			return fmt.Errorf("uploading %s: %w", name, err)
		}
	}
	return nil
}

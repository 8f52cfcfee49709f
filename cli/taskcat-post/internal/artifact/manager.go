// Package artifact scrubs the AWS account ID from taskcat's reports and
// uploads them as a workflow artifact.
package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ShahradR/action-taskcat/cli/taskcat-post/internal/artifactclient"
	"github.com/ShahradR/action-taskcat/cli/taskcat-post/internal/paths"
)

// Mask replaces every occurrence of the account ID.
const Mask = "***"

var ErrEmptyAccountID = errors.New("the AWS account ID to mask must not be empty")

// Client uploads a named artifact made of files under rootDir.
type Client interface {
	UploadArtifact(ctx context.Context, name string, files []string, rootDir string) (artifactclient.UploadResponse, error)
}

type Logger interface {
	Info(msg string)
}

type Manager struct {
	client Client
	log    Logger
	// outputDir always ends in a separator.
	outputDir string
	name      string

	readFile  func(string) ([]byte, error)
	writeFile func(string, []byte, os.FileMode) error
}

// NewManager builds a Manager for the taskcat output directory under
// workspace. An empty name uploads the artifact as "taskcat_outputs".
func NewManager(client Client, log Logger, workspace, name string) *Manager {
	dir := paths.OutputDir(workspace)
	if name == "" {
		name = paths.ArtifactName(dir)
	}
	return &Manager{
		client:    client,
		log:       log,
		outputDir: dir,
		name:      name,
		readFile:  os.ReadFile,
		writeFile: os.WriteFile,
	}
}

// OutputDir is the directory MaskAndPublish works on.
func (m *Manager) OutputDir() string { return m.outputDir }

// MaskAndPublish masks accountID in the taskcat reports, then uploads them.
func (m *Manager) MaskAndPublish(ctx context.Context, accountID string) error {
	m.log.Info("Entered the maskAndPublishTaskcatArtifacts function")
	if err := m.MaskAccountID(accountID, m.outputDir); err != nil {
		return err
	}
	return m.PublishOutputs(ctx, m.outputDir)
}

// MaskAccountID rewrites each file directly under dir that contains
// accountID, replacing it with Mask. Files without it are not written.
func (m *Manager) MaskAccountID(accountID, dir string) error {
	if accountID == "" {
		return ErrEmptyAccountID
	}
	files, err := listFiles(dir)
	if err != nil {
		return err
	}
	id := []byte(accountID)
	for _, f := range files {
		data, err := m.readFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}
		if !bytes.Contains(data, id) {
			continue
		}
		mode := os.FileMode(0o644)
		if st, err := os.Stat(f); err == nil {
			mode = st.Mode().Perm()
		}
		if err := m.writeFile(f, bytes.ReplaceAll(data, id, []byte(Mask)), mode); err != nil {
			return fmt.Errorf("write %s: %w", f, err)
		}
	}
	return nil
}

// PublishOutputs uploads every file directly under dir in a single call.
func (m *Manager) PublishOutputs(ctx context.Context, dir string) error {
	files, err := listFiles(dir)
	if err != nil {
		return err
	}
	if _, err := m.client.UploadArtifact(ctx, m.name, files, dir); err != nil {
		return fmt.Errorf("upload artifact %s: %w", m.name, err)
	}
	return nil
}

// listFiles globs dir+"*" and keeps regular files, sorted.
func listFiles(dir string) ([]string, error) {
	matches, err := filepath.Glob(dir + "*")
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	files := make([]string, 0, len(matches))
	for _, p := range matches {
		st, err := os.Stat(p)
		if err != nil || !st.Mode().IsRegular() {
			continue
		}
		files = append(files, p)
	}
	sort.Strings(files)
	return files, nil
}

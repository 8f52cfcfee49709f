// Package artifactclient uploads a set of files as a named workflow artifact,
// either to the GitHub Actions artifact service or to an S3 bucket.
package artifactclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ShahradR/action-taskcat/cli/taskcat-post/internal/awscred"
)

// UploadResponse describes a finished upload.
type UploadResponse struct {
	// ID is the artifact ID for the GitHub backend, the object prefix for S3.
	ID   string
	Size int64
}

var (
	ErrOutsideRoot   = errors.New("file is not under the root directory")
	ErrNoRuntimeEnv  = errors.New("artifact service environment is not available")
	ErrInvalidToken  = errors.New("ACTIONS_RUNTIME_TOKEN does not carry an Actions.Results scope")
	ErrUploadRefused = errors.New("artifact service refused the upload")
)

// Options selects and configures a backend.
type Options struct {
	// S3Bucket selects the S3 backend when non-empty.
	S3Bucket string
	S3Prefix string
	Region   string

	// Getenv defaults to os.Getenv.
	Getenv     func(string) string
	HTTPClient *http.Client
	Log        *log.Logger
}

// Backend is implemented by every artifact store in this package.
type Backend interface {
	UploadArtifact(ctx context.Context, name string, files []string, rootDir string) (UploadResponse, error)
}

// New returns the S3 backend when a bucket is configured and the GitHub
// artifact service backend otherwise.
func New(opts Options) (Backend, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	logger := opts.Log
	if logger == nil {
		logger = log.StandardLogger()
	}
	if strings.TrimSpace(opts.S3Bucket) != "" {
		creds := awscred.FromEnv(getenv)
		if opts.Region != "" {
			creds.Region = opts.Region
		}
		return NewS3(S3Options{
			Bucket: opts.S3Bucket,
			Prefix: opts.S3Prefix,
			Creds:  creds,
			Log:    logger,
		}), nil
	}
	token := getenv("ACTIONS_RUNTIME_TOKEN")
	resultsURL := getenv("ACTIONS_RESULTS_URL")
	switch {
	case token == "":
		return nil, fmt.Errorf("%w: ACTIONS_RUNTIME_TOKEN is not set", ErrNoRuntimeEnv)
	case resultsURL == "":
		return nil, fmt.Errorf("%w: ACTIONS_RESULTS_URL is not set", ErrNoRuntimeEnv)
	}
	return NewGitHub(GitHubOptions{
		Token:      token,
		ResultsURL: resultsURL,
		HTTPClient: opts.HTTPClient,
		Log:        logger,
	})
}

// NoFilesWarning is logged when an upload is requested with no files.
const NoFilesWarning = "No files found that can be uploaded"

// skipEmpty reports whether files is empty, warning when it is. An empty
// upload succeeds without contacting the store.
func skipEmpty(logger *log.Logger, name string, files []string) bool {
	if len(files) > 0 {
		return false
	}
	logger.WithField("artifact", name).Warn(NoFilesWarning)
	return true
}

// relativeNames maps each file to its slash-separated path under rootDir.
func relativeNames(files []string, rootDir string) ([]string, error) {
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(files))
	for i, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(root, abs)
		if err != nil || rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
			return nil, fmt.Errorf("%w: %s", ErrOutsideRoot, f)
		}
		names[i] = filepath.ToSlash(rel)
	}
	return names, nil
}

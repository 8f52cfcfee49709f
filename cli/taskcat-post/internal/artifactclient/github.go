package artifactclient

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/zip"
	log "github.com/sirupsen/logrus"
)

const (
	artifactService = "/twirp/github.actions.results.api.v1.ArtifactService/"
	artifactVersion = 4
	blobAPIVersion  = "2020-10-02"
	userAgent       = "action-taskcat"
)

type GitHubOptions struct {
	Token      string
	ResultsURL string
	HTTPClient *http.Client
	Log        *log.Logger
}

// GitHub uploads artifacts through the Actions results service: the files
// are zipped, the zip is written to the signed blob URL returned by
// CreateArtifact, and FinalizeArtifact records its size and digest.
type GitHub struct {
	token      string
	resultsURL string
	runID      string
	jobID      string
	http       *http.Client
	log        *log.Logger
}

func NewGitHub(opts GitHubOptions) (*GitHub, error) {
	runID, jobID, err := backendIDs(opts.Token)
	if err != nil {
		return nil, err
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 0}
	}
	logger := opts.Log
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &GitHub{
		token:      opts.Token,
		resultsURL: strings.TrimRight(opts.ResultsURL, "/"),
		runID:      runID,
		jobID:      jobID,
		http:       client,
		log:        logger,
	}, nil
}

// backendIDs pulls the workflow run and job backend IDs out of the
// "Actions.Results:<run>:<job>" scope of the runtime token.
func backendIDs(token string) (string, string, error) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return "", "", ErrInvalidToken
	}
	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	var claims struct {
		Scope string `json:"scp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	for _, scope := range strings.Fields(claims.Scope) {
		fields := strings.Split(scope, ":")
		if len(fields) == 3 && fields[0] == "Actions.Results" && fields[1] != "" && fields[2] != "" {
			return fields[1], fields[2], nil
		}
	}
	return "", "", ErrInvalidToken
}

type createArtifactRequest struct {
	RunBackendID string `json:"workflow_run_backend_id"`
	JobBackendID string `json:"workflow_job_run_backend_id"`
	Name         string `json:"name"`
	Version      int    `json:"version"`
}

type createArtifactResponse struct {
	OK              bool   `json:"ok"`
	SignedUploadURL string `json:"signed_upload_url"`
}

type finalizeArtifactRequest struct {
	RunBackendID string `json:"workflow_run_backend_id"`
	JobBackendID string `json:"workflow_job_run_backend_id"`
	Name         string `json:"name"`
	Size         string `json:"size"`
	Hash         string `json:"hash"`
}

type finalizeArtifactResponse struct {
	OK         bool        `json:"ok"`
	ArtifactID json.Number `json:"artifact_id"`
}

func (g *GitHub) UploadArtifact(ctx context.Context, name string, files []string, rootDir string) (UploadResponse, error) {
	if skipEmpty(g.log, name, files) {
		return UploadResponse{}, nil
	}
	names, err := relativeNames(files, rootDir)
	if err != nil {
		return UploadResponse{}, err
	}

	var created createArtifactResponse
	if err := g.call(ctx, "CreateArtifact", createArtifactRequest{
		RunBackendID: g.runID,
		JobBackendID: g.jobID,
		Name:         name,
		Version:      artifactVersion,
	}, &created); err != nil {
		return UploadResponse{}, err
	}
	if !created.OK || created.SignedUploadURL == "" {
		return UploadResponse{}, fmt.Errorf("%w: CreateArtifact for %s", ErrUploadRefused, name)
	}

	archive, err := os.CreateTemp("", "taskcat-artifact-*.zip")
	if err != nil {
		return UploadResponse{}, err
	}
	defer func() {
		archive.Close()
		os.Remove(archive.Name())
	}()
	size, digest, err := writeZip(archive, files, names)
	if err != nil {
		return UploadResponse{}, fmt.Errorf("zip %s: %w", name, err)
	}
	if _, err := archive.Seek(0, io.SeekStart); err != nil {
		return UploadResponse{}, err
	}
	if err := g.putBlob(ctx, created.SignedUploadURL, archive, size); err != nil {
		return UploadResponse{}, err
	}

	var finalized finalizeArtifactResponse
	if err := g.call(ctx, "FinalizeArtifact", finalizeArtifactRequest{
		RunBackendID: g.runID,
		JobBackendID: g.jobID,
		Name:         name,
		Size:         strconv.FormatInt(size, 10),
		Hash:         "sha256:" + digest,
	}, &finalized); err != nil {
		return UploadResponse{}, err
	}
	if !finalized.OK {
		return UploadResponse{}, fmt.Errorf("%w: FinalizeArtifact for %s", ErrUploadRefused, name)
	}
	g.log.WithFields(log.Fields{"files": len(files), "id": finalized.ArtifactID.String()}).
		Infof("Artifact %s uploaded (%s)", name, humanize.Bytes(uint64(size)))
	return UploadResponse{ID: finalized.ArtifactID.String(), Size: size}, nil
}

// call issues one twirp JSON request against the artifact service.
func (g *GitHub) call(ctx context.Context, method string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.resultsURL+artifactService+method, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.token)
	req.Header.Set("User-Agent", userAgent)
	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read response: %w", method, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s: %s", method, resp.Status, strings.TrimSpace(string(data)))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", method, err)
	}
	return nil
}

func (g *GitHub) putBlob(ctx context.Context, url string, body io.Reader, size int64) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, body)
	if err != nil {
		return err
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", "application/zip")
	req.Header.Set("x-ms-blob-type", "BlockBlob")
	req.Header.Set("x-ms-version", blobAPIVersion)
	resp, err := g.http.Do(req)
	if err != nil {
		return fmt.Errorf("upload blob: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upload blob: %s: %s", resp.Status, strings.TrimSpace(string(data)))
	}
	return nil
}

// writeZip archives files under the given entry names and returns the
// archive size and hex sha256.
func writeZip(w io.Writer, files, names []string) (int64, string, error) {
	h := sha256.New()
	cw := &countingWriter{w: io.MultiWriter(w, h)}
	zw := zip.NewWriter(cw)
	for i, f := range files {
		if err := addFile(zw, f, names[i]); err != nil {
			return 0, "", err
		}
	}
	if err := zw.Close(); err != nil {
		return 0, "", err
	}
	return cw.n, hex.EncodeToString(h.Sum(nil)), nil
}

func addFile(zw *zip.Writer, path, name string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	st, err := src.Stat()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(st)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate
	if hdr.Modified.IsZero() {
		hdr.Modified = time.Now()
	}
	dst, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = io.Copy(dst, src)
	return err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

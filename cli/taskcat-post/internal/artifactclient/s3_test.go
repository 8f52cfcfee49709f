package artifactclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShahradR/action-taskcat/cli/taskcat-post/internal/awscred"
)

func TestS3UploadArtifact(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", filepath.Join(t.TempDir(), "config"))
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", filepath.Join(t.TempDir(), "credentials"))

	var mu sync.Mutex
	objects := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, http.MethodPut, r.Method)
		body, _ := io.ReadAll(r.Body)
		objects[r.URL.Path] = string(body)
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewS3(S3Options{
		Bucket:   "reports",
		Prefix:   "/ci/",
		Endpoint: srv.URL,
		Creds:    awscred.Creds{Region: "us-east-1", AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "secret"},
	})
	dir, files := writeOutputs(t)
	resp, err := s.UploadArtifact(context.Background(), "taskcat_outputs", files, dir)
	require.NoError(t, err)
	assert.Equal(t, "ci/taskcat_outputs", resp.ID)
	assert.Equal(t, int64(len("first")+len("second")), resp.Size)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, map[string]string{
		"/reports/ci/taskcat_outputs/test1.txt": "first",
		"/reports/ci/taskcat_outputs/test2.txt": "second",
	}, objects)
}

func TestS3KeyPrefix(t *testing.T) {
	assert.Equal(t, "taskcat_outputs", NewS3(S3Options{}).keyPrefix("taskcat_outputs"))
	assert.Equal(t, "a/b/taskcat_outputs", NewS3(S3Options{Prefix: "a/b/"}).keyPrefix("taskcat_outputs"))
}

type failingPutObject struct{ t *testing.T }

func (f failingPutObject) PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.t.Error("PutObject called for an empty upload")
	return &s3.PutObjectOutput{}, nil
}

func TestS3UploadWithoutFilesWarns(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	s := NewS3(S3Options{Bucket: "reports", Log: logger})
	s.api = failingPutObject{t: t}

	resp, err := s.UploadArtifact(context.Background(), "taskcat_outputs", []string{}, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, UploadResponse{}, resp)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, log.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "taskcat_outputs", hook.LastEntry().Data["artifact"])
}

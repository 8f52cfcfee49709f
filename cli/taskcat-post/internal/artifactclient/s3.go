package artifactclient

import (
	"context"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
	log "github.com/sirupsen/logrus"

	"github.com/ShahradR/action-taskcat/cli/taskcat-post/internal/awscred"
)

type S3Options struct {
	Bucket string
	// Prefix is prepended to every key; "" stores artifacts at the bucket root.
	Prefix string
	Creds  awscred.Creds
	// Endpoint overrides the S3 endpoint and switches to path-style
	// addressing, for S3-compatible stores.
	Endpoint string
	Log      *log.Logger
}

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3 stores each file as <prefix>/<name>/<relative path> in a bucket.
type S3 struct {
	opts S3Options
	api  putObjectAPI
}

func NewS3(opts S3Options) *S3 {
	if opts.Log == nil {
		opts.Log = log.StandardLogger()
	}
	return &S3{opts: opts}
}

func (s *S3) client(ctx context.Context) (putObjectAPI, error) {
	if s.api != nil {
		return s.api, nil
	}
	cfg, err := config.LoadDefaultConfig(ctx, awscred.LoadOptions(s.opts.Creds)...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	s.api = s3.NewFromConfig(cfg, func(o *s3.Options) {
		if s.opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(s.opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return s.api, nil
}

func (s *S3) keyPrefix(name string) string {
	return path.Join(strings.Trim(s.opts.Prefix, "/"), name)
}

func (s *S3) UploadArtifact(ctx context.Context, name string, files []string, rootDir string) (UploadResponse, error) {
	if skipEmpty(s.opts.Log, name, files) {
		return UploadResponse{}, nil
	}
	names, err := relativeNames(files, rootDir)
	if err != nil {
		return UploadResponse{}, err
	}
	api, err := s.client(ctx)
	if err != nil {
		return UploadResponse{}, err
	}
	prefix := s.keyPrefix(name)
	var total int64
	for i, f := range files {
		n, err := s.putFile(ctx, api, f, path.Join(prefix, names[i]))
		if err != nil {
			return UploadResponse{}, err
		}
		total += n
	}
	s.opts.Log.WithFields(log.Fields{"bucket": s.opts.Bucket, "files": len(files)}).
		Infof("Artifact %s uploaded to s3://%s/%s (%s)", name, s.opts.Bucket, prefix, humanize.Bytes(uint64(total)))
	return UploadResponse{ID: prefix, Size: total}, nil
}

func (s *S3) putFile(ctx context.Context, api putObjectAPI, file, key string) (int64, error) {
	f, err := os.Open(file)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	st, err := f.Stat()
	if err != nil {
		return 0, err
	}
	_, err = api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.opts.Bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(st.Size()),
	})
	if err != nil {
		return 0, fmt.Errorf("put s3://%s/%s: %w", s.opts.Bucket, key, err)
	}
	return st.Size(), nil
}

package awscred

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
)

type Creds struct {
	Profile         string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
}

// FromEnv reads the standard AWS_* variables. AWS_REGION wins over
// AWS_DEFAULT_REGION.
func FromEnv(getenv func(string) string) Creds {
	c := Creds{
		Profile:         strings.TrimSpace(getenv("AWS_PROFILE")),
		Region:          strings.TrimSpace(getenv("AWS_REGION")),
		AccessKeyID:     strings.TrimSpace(getenv("AWS_ACCESS_KEY_ID")),
		SecretAccessKey: strings.TrimSpace(getenv("AWS_SECRET_ACCESS_KEY")),
		SessionToken:    strings.TrimSpace(getenv("AWS_SESSION_TOKEN")),
	}
	if c.Region == "" {
		c.Region = strings.TrimSpace(getenv("AWS_DEFAULT_REGION"))
	}
	return c
}

// Static reports whether a full access key pair is present.
func (c Creds) Static() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// LoadOptions turns c into options for config.LoadDefaultConfig. A key pair
// takes precedence over a named profile; with neither, the default chain
// (web identity, IMDS, ...) applies.
func LoadOptions(c Creds) []func(*config.LoadOptions) error {
	var opts []func(*config.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, config.WithRegion(c.Region))
	}
	switch {
	case c.Static():
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, c.SessionToken)))
	case c.Profile != "":
		opts = append(opts, config.WithSharedConfigProfile(c.Profile))
	}
	return opts
}

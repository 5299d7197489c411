// fieldbook/internal/s3/uploader.go
package s3

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"fieldbook/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// PutObjectAPI is the part of *s3.Client the uploader uses.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type Uploader struct {
	Client           PutObjectAPI
	Bucket           string
	Region           string
	CloudFrontDomain string
	Prefix           string
}

func NewUploader(ctx context.Context, cfg config.S3Config) (*Uploader, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Uploader{
		Client:           s3.NewFromConfig(sdkConfig),
		Bucket:           cfg.Bucket,
		Region:           cfg.Region,
		CloudFrontDomain: cfg.CloudFrontDomain,
		Prefix:           cfg.ExportPrefix,
	}, nil
}

// ExportKey returns a unique object key for an export made at t.
func (u *Uploader) ExportKey(t time.Time, ext string) string {
	name := fmt.Sprintf("fields-%s-%s.%s", t.UTC().Format("20060102-150405"), uuid.NewString(), strings.TrimPrefix(ext, "."))
	return path.Join(u.Prefix, name)
}

// UploadFile uploads body under objectKey and returns its public URL.
func (u *Uploader) UploadFile(ctx context.Context, body io.Reader, objectKey, contentType string) (string, error) {
	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.Bucket),
		Key:         aws.String(objectKey),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file to S3: %w", err)
	}

	return u.URL(objectKey), nil
}

// URL is the CloudFront URL of objectKey when a domain is configured, the S3 URL otherwise.
func (u *Uploader) URL(objectKey string) string {
	if u.CloudFrontDomain != "" {
		return fmt.Sprintf("https://%s/%s", u.CloudFrontDomain, objectKey)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.Bucket, u.Region, objectKey)
}

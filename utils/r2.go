package utils

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"despachos/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// R2Uploader archives generated manifests in a Cloudflare R2 bucket.
type R2Uploader struct {
	client     *s3.Client
	bucket     string
	publicBase string
}

func NewR2Uploader(ctx context.Context, cfg config.R2Config) (*R2Uploader, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("missing required R2 settings")
	}
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.AccountID)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load R2 config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})
	return &R2Uploader{client: client, bucket: cfg.Bucket, publicBase: cfg.PublicURL}, nil
}

// Upload stores a PDF under its base name and returns the public URL.
func (u *R2Uploader) Upload(ctx context.Context, fileBytes []byte, filename string) (string, error) {
	key := filepath.Base(filename)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(fileBytes),
		ContentType: aws.String("application/pdf"),
	})
	if err != nil {
		return "", fmt.Errorf("upload to R2: %w", err)
	}
	return u.PublicURL(key), nil
}

func (u *R2Uploader) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(u.publicBase, "/"), url.PathEscape(key))
}

// Delete removes the object a public URL points to.
func (u *R2Uploader) Delete(ctx context.Context, fileURL string) error {
	parsed, err := url.Parse(fileURL)
	if err != nil {
		return fmt.Errorf("invalid file URL: %w", err)
	}
	_, err = u.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(u.bucket),
		Key:    aws.String(filepath.Base(parsed.Path)),
	})
	if err != nil {
		return fmt.Errorf("delete R2 object: %w", err)
	}
	return nil
}

// Package storage hands out presigned S3 upload URLs for sale journals.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// PresignExpiry is how long a presigned upload URL stays valid.
const PresignExpiry = 15 * time.Minute

// Options describe an S3-compatible backend (AWS or MinIO).
type Options struct {
	AccessKey    string
	SecretKey    string
	Bucket       string
	Region       string
	BaseEndpoint string
}

type S3Presigner struct {
	bucket  string
	presign *s3.PresignClient
	now     func() time.Time
}

func NewS3Presigner(ctx context.Context, opts Options) (*S3Presigner, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(opts.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(opts.AccessKey, opts.SecretKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("s3 config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Presigner{bucket: opts.Bucket, presign: s3.NewPresignClient(client), now: time.Now}, nil
}

// JournalKey is the object key of a new journal upload for tenantID.
func JournalKey(tenantID int64, at time.Time) string {
	at = at.UTC()
	return fmt.Sprintf("journals/%d/%d/%02d/%02d/%s.jsonl", tenantID, at.Year(), at.Month(), at.Day(), uuid.New())
}

// PresignJournalPut returns a fresh object key and a presigned PUT URL for it.
func (p *S3Presigner) PresignJournalPut(ctx context.Context, tenantID int64) (string, string, error) {
	key := JournalKey(tenantID, p.now())

	req, err := p.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(PresignExpiry))
	if err != nil {
		return "", "", fmt.Errorf("presign: %w", err)
	}

	return key, req.URL, nil
}

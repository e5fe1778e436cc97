package s3

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/de-tools/cost-atlas/pkg/models/api"
)

// PutObjectAPI is the subset of the S3 client used by the sink
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *awss3.PutObjectInput, optFns ...func(*awss3.Options)) (*awss3.PutObjectOutput, error)
}

// Sink uploads every report as a JSON object keyed by generation date and report id
type Sink struct {
	client PutObjectAPI
	bucket string
	prefix string
}

func NewSink(client PutObjectAPI, bucket, prefix string) *Sink {
	return &Sink{client: client, bucket: bucket, prefix: prefix}
}

// NewSinkFromConfig builds the S3 client from a loaded AWS config
func NewSinkFromConfig(cfg aws.Config, bucket, prefix string) *Sink {
	return NewSink(awss3.NewFromConfig(cfg), bucket, prefix)
}

// Key returns the object key of the report
func (s *Sink) Key(report *api.Report) string {
	id := report.ID
	if id == "" {
		id = uuid.NewString()
	}
	day := "undated"
	if !report.GeneratedAt.IsZero() {
		day = report.GeneratedAt.UTC().Format("2006/01/02")
	}
	return path.Join(s.prefix, day, id+".json")
}

func (s *Sink) Handle(ctx context.Context, report *api.Report) error {
	logger := zerolog.Ctx(ctx)

	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	key := s.Key(report)
	_, err = s.client.PutObject(ctx, &awss3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("failed to upload report to s3://%s/%s: %w", s.bucket, key, err)
	}

	logger.Info().
		Str("bucket", s.bucket).
		Str("key", key).
		Msg("report uploaded")
	return nil
}

package services

import (
	"bytes"
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	sc "github.com/sterilpoint/protokol/internal/server/config"
)

// presignValidity bounds how long a handed-out download URL stays usable.
const presignValidity = 15 * time.Minute

// ObjectStore is the slice of object storage the services need: signature
// images and export documents go in, stale signature images go out, and
// stored documents are handed to clients through presigned URLs.
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string) (string, error)
}

// S3Store implements ObjectStore over an S3-compatible backend (MinIO in
// development).
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
}

// NewS3Store builds the S3 client from static credentials with the endpoint
// override pointing at the configured backend.
func NewS3Store(ctx context.Context, conf *sc.Config) (*S3Store, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(conf.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			conf.S3RootUser,
			conf.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(conf.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return &S3Store{client: client, presign: s3.NewPresignClient(client), bucket: conf.S3Bucket}, nil
}

func (s *S3Store) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	return err
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *S3Store) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(presignValidity))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}

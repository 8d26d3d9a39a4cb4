package backup

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the slice of the S3 client the writer needs.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Writer lands backup objects in one bucket and reports their s3:// URLs.
type Writer struct {
	client S3API
	bucket string
}

func NewWriter(client S3API, bucket string) *Writer {
	return &Writer{
		client: client,
		bucket: bucket,
	}
}

// Upload stores one object and returns its s3:// URL.
func (w *Writer) Upload(ctx context.Context, key, contentType string, body io.Reader, meta map[string]string) (string, error) {
	_, err := w.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(w.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
		Metadata:    meta,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	s3URL := fmt.Sprintf("s3://%s/%s", w.bucket, key)
	log.Printf("Uploaded to S3: %s", s3URL)
	return s3URL, nil
}

// UploadJSON serializes v with indentation and stores it as one JSON object.
func (w *Writer) UploadJSON(ctx context.Context, key string, v interface{}, meta map[string]string) (string, error) {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return w.Upload(ctx, key, "application/json", bytes.NewReader(data), meta)
}

// NewRunID creates a random hex run identifier.
func NewRunID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// Fallback to timestamp-based ID
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

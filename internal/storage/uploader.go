package storage

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"field-backend/internal/config"
	"field-backend/internal/timeutil"
)

// MaxUploadSize is the hard ceiling for a single attachment.
const MaxUploadSize = 10 << 20 // 10 MB

// allowedTypes is the attachment whitelist: site photos and scanned
// documents only.
var allowedTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"image/heic":      ".heic",
	"application/pdf": ".pdf",
}

// Uploader pushes attachments to an S3-compatible bucket (R2 in
// production) and returns public URLs for the stored objects.
type Uploader struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewUploader(cfg *config.Config) (*Uploader, error) {
	ctx := context.Background()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Storage.AccessKey,
			cfg.Storage.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Storage.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to configure storage client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
	})

	return &Uploader{
		client:    client,
		bucket:    cfg.Storage.Bucket,
		publicURL: strings.TrimRight(cfg.Storage.PublicURL, "/"),
	}, nil
}

// Validate checks size and content type before any bytes leave the
// server. Returns the canonical extension for the stored object.
func Validate(contentType string, size int64) (string, error) {
	if size > MaxUploadSize {
		return "", fmt.Errorf("file exceeds the %d MB limit", MaxUploadSize>>20)
	}
	ext, ok := allowedTypes[strings.ToLower(contentType)]
	if !ok {
		return "", fmt.Errorf("unsupported file type %q", contentType)
	}
	return ext, nil
}

// Upload stores one attachment and returns its public URL. Objects are
// keyed by date and a random id so concurrent uploads never collide.
func (u *Uploader) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	ext, err := Validate(contentType, int64(len(data)))
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(path.Base(filename), path.Ext(filename))
	if base == "" || base == "." {
		base = "upload"
	}
	key := fmt.Sprintf("attachments/%s/%s-%s%s",
		timeutil.Now().Format("2006/01/02"), base, uuid.NewString()[:8], ext)

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", filename, err)
	}

	log.Printf("[Storage] uploaded %s (%d bytes)", key, len(data))
	return u.publicURL + "/" + key, nil
}

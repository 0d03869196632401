// Package avatars uploads recipient images to S3-compatible object storage
// (AWS S3, MinIO) and returns the URL stored in the recipient record.
package avatars

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/mobank/internal/common"
	"github.com/dmitrijs2005/mobank/internal/logging"
	"github.com/google/uuid"
)

// MaxSize is the largest image accepted for upload.
const MaxSize = 5 << 20

type Uploader interface {
	Upload(ctx context.Context, userID, filename string, body io.Reader) (string, error)
}

type Config struct {
	Bucket    string
	Region    string
	Endpoint  string // empty for AWS; MinIO or other S3-compatible base URL otherwise
	AccessKey string
	SecretKey string
	// PublicURL prefixes object keys in returned URLs. Defaults to
	// <Endpoint>/<Bucket>.
	PublicURL string
}

type S3Uploader struct {
	client    *s3.Client
	bucket    string
	publicURL string
	log       logging.Logger
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

func NewS3Uploader(ctx context.Context, cfg Config, log logging.Logger) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("avatar bucket is required: %w", common.ErrInvalidArgument)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		if cfg.Endpoint != "" {
			publicURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
		} else {
			publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &S3Uploader{
		client:    client,
		bucket:    cfg.Bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		log:       log.With("component", "avatars"),
	}, nil
}

// ObjectKey builds avatars/<userID>/<random><ext>.
func ObjectKey(userID, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join("avatars", userID, uuid.NewString()+ext)
}

// Upload stores the image read from body and returns its public URL.
func (u *S3Uploader) Upload(ctx context.Context, userID, filename string, body io.Reader) (string, error) {
	if userID == "" {
		return "", fmt.Errorf("user id is required: %w", common.ErrInvalidArgument)
	}

	data, err := io.ReadAll(io.LimitReader(body, MaxSize+1))
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image is empty: %w", common.ErrInvalidArgument)
	}
	if len(data) > MaxSize {
		return "", fmt.Errorf("image exceeds %d bytes: %w", MaxSize, common.ErrInvalidArgument)
	}

	key := ObjectKey(userID, filename)
	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		u.log.Warn(ctx, "avatar upload failed", "user_id", userID, "key", key, "error", err)
		return "", fmt.Errorf("upload %s: %w: %w", key, common.ErrNetworkUnavailable, err)
	}

	u.log.Info(ctx, "avatar uploaded", "user_id", userID, "key", key, "size", len(data))
	return u.publicURL + "/" + key, nil
}

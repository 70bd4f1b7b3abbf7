package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/sbilibin2017/audio-vault/internal/config"
	"github.com/sbilibin2017/audio-vault/internal/logger"
	"github.com/sbilibin2017/audio-vault/internal/models"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// NewS3Client builds a client with static credentials. A custom endpoint
// switches to path-style addressing for S3-compatible servers.
func NewS3Client(ctx context.Context, cfg config.S3Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Store keeps files under the key <ownerID>/<name> in a single bucket.
type S3Store struct {
	client   S3API
	bucket   string
	region   string
	endpoint string
	maxSize  int64
}

// NewS3Store creates a store over client. A non-positive maxSize means
// DefaultMaxSize.
func NewS3Store(client S3API, cfg config.S3Config, maxSize int64) *S3Store {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &S3Store{
		client:   client,
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		maxSize:  maxSize,
	}
}

func objectKey(ownerID int64, name string) string {
	return ownerKey(ownerID) + "/" + name
}

func (s *S3Store) location(key string) string {
	escaped := (&url.URL{Path: key}).EscapedPath()
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, escaped)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, escaped)
}

// Put buffers at most maxSize bytes so the object length is known before
// the request is sent.
func (s *S3Store) Put(ctx context.Context, ownerID int64, name, contentType string, body io.Reader) (*models.AudioFile, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	if err := ValidateContentType(contentType); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(newContextReader(ctx, io.NopCloser(body)), s.maxSize+1))
	if err != nil {
		return nil, err
	}
	if n > s.maxSize {
		return nil, ErrPayloadTooLarge
	}

	key := objectKey(ownerID, name)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(buf.Bytes()),
		ContentLength: aws.Int64(n),
		ContentType:   aws.String(contentType),
		Metadata:      map[string]string{"userId": ownerKey(ownerID)},
	})
	if err != nil {
		logger.Log.Errorw("failed to put object", "bucket", s.bucket, "key", key, "error", err)
		return nil, err
	}

	logger.Log.Infow("audio file stored", "owner_id", ownerID, "name", name, "size", n, "bucket", s.bucket, "key", key)

	return &models.AudioFile{
		OwnerID:  ownerID,
		Name:     name,
		Size:     n,
		Location: s.location(key),
	}, nil
}

// List returns the owner's objects sorted by name.
func (s *S3Store) List(ctx context.Context, ownerID int64) ([]models.AudioFile, error) {
	prefix := ownerKey(ownerID) + "/"
	files := []models.AudioFile{}

	var token *string
	for {
		out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			logger.Log.Errorw("failed to list objects", "bucket", s.bucket, "prefix", prefix, "error", err)
			return nil, err
		}

		for _, obj := range out.Contents {
			key := aws.ToString(obj.Key)
			name := strings.TrimPrefix(key, prefix)
			if ValidateName(name) != nil {
				continue
			}
			files = append(files, models.AudioFile{
				OwnerID:  ownerID,
				Name:     name,
				Size:     aws.ToInt64(obj.Size),
				Location: s.location(key),
			})
		}

		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			break
		}
		token = out.NextContinuationToken
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Open streams the object. The stream stops when ctx is done.
func (s *S3Store) Open(ctx context.Context, ownerID int64, name string) (*models.AudioStream, error) {
	if err := ValidateName(name); err != nil {
		return nil, ErrFileNotFound
	}

	key := objectKey(ownerID, name)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if isNotFound(err) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		logger.Log.Errorw("failed to get object", "bucket", s.bucket, "key", key, "error", err)
		return nil, err
	}

	contentType := aws.ToString(out.ContentType)
	if contentType == "" {
		contentType = ContentTypeByName(name)
	}

	return &models.AudioStream{
		Body:        newContextReader(ctx, out.Body),
		Size:        aws.ToInt64(out.ContentLength),
		ContentType: contentType,
	}, nil
}

// Delete removes the object. DeleteObject succeeds for absent keys, so
// existence is checked first to report ErrFileNotFound consistently.
func (s *S3Store) Delete(ctx context.Context, ownerID int64, name string) error {
	if err := ValidateName(name); err != nil {
		return ErrFileNotFound
	}

	key := objectKey(ownerID, name)
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if isNotFound(err) {
		return ErrFileNotFound
	}
	if err != nil {
		logger.Log.Errorw("failed to head object", "bucket", s.bucket, "key", key, "error", err)
		return err
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		logger.Log.Errorw("failed to delete object", "bucket", s.bucket, "key", key, "error", err)
		return err
	}

	logger.Log.Infow("audio file deleted", "owner_id", ownerID, "name", name, "bucket", s.bucket, "key", key)
	return nil
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var notFound *types.NotFound
	if errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return true
		}
	}
	return false
}

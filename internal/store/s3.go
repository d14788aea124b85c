package store

import (
	"context"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	apperrors "github.com/yigitcanlotec/OOP-challenge-4/pkg/errors"
)

const (
	backendS3 = "s3"

	// S3 DeleteObjects accepts at most 1000 keys per request
	maxDeleteBatch = 1000
)

// S3API is the subset of *s3.Client used by the image store.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// Presigner is the subset of *s3.PresignClient used by the image store.
type Presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3ImageStore implements ImageStore on a single bucket
type S3ImageStore struct {
	client    S3API
	presigner Presigner
	bucket    string
}

// NewS3ImageStore creates an image store
func NewS3ImageStore(client S3API, presigner Presigner, bucket string) *S3ImageStore {
	return &S3ImageStore{
		client:    client,
		presigner: presigner,
		bucket:    bucket,
	}
}

func (s *S3ImageStore) PresignUpload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	var url string
	err := instrument(ctx, backendS3, "presign_put", func(ctx context.Context) error {
		req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(ttl))
		if err != nil {
			return err
		}
		url = req.URL
		return nil
	})
	return url, err
}

func (s *S3ImageStore) PresignDownload(ctx context.Context, key string, ttl time.Duration) (string, error) {
	var url string
	err := instrument(ctx, backendS3, "presign_get", func(ctx context.Context) error {
		req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		}, s3.WithPresignExpires(ttl))
		if err != nil {
			return err
		}
		url = req.URL
		return nil
	})
	return url, err
}

func (s *S3ImageStore) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	keys := []string{}
	err := instrument(ctx, backendS3, "list_objects", func(ctx context.Context) error {
		paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
			Bucket: aws.String(s.bucket),
			Prefix: aws.String(prefix),
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return err
			}
			for _, obj := range page.Contents {
				keys = append(keys, aws.ToString(obj.Key))
			}
		}
		return nil
	})
	return keys, err
}

func (s *S3ImageStore) DeleteKeys(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}

	return instrument(ctx, backendS3, "delete_objects", func(ctx context.Context) error {
		for start := 0; start < len(keys); start += maxDeleteBatch {
			end := start + maxDeleteBatch
			if end > len(keys) {
				end = len(keys)
			}

			objects := make([]s3types.ObjectIdentifier, 0, end-start)
			for _, key := range keys[start:end] {
				objects = append(objects, s3types.ObjectIdentifier{Key: aws.String(key)})
			}

			out, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
				Bucket: aws.String(s.bucket),
				Delete: &s3types.Delete{
					Objects: objects,
					Quiet:   aws.Bool(true),
				},
			})
			if err != nil {
				return err
			}
			if len(out.Errors) > 0 {
				first := out.Errors[0]
				return apperrors.NewAppErrorf(apperrors.CodeStoreInternal, nil,
					"failed to delete %d object(s), first %s: %s",
					len(out.Errors), aws.ToString(first.Key), aws.ToString(first.Message))
			}
		}
		return nil
	})
}

// ObjectKey joins key segments with "/", the only separator the key scheme uses.
func ObjectKey(segments ...string) string {
	return strings.Join(segments, "/")
}

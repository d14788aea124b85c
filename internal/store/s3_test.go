package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yigitcanlotec/OOP-challenge-4/pkg/errors"
)

type fakeS3 struct {
	pages        []*s3.ListObjectsV2Output
	listCalls    int
	deleteInputs []*s3.DeleteObjectsInput
	deleteErrors []s3types.Error
	err          error
}

func (f *fakeS3) ListObjectsV2(_ context.Context, _ *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.listCalls >= len(f.pages) {
		return &s3.ListObjectsV2Output{}, nil
	}
	page := f.pages[f.listCalls]
	f.listCalls++
	return page, nil
}

func (f *fakeS3) DeleteObjects(_ context.Context, in *s3.DeleteObjectsInput, _ ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.deleteInputs = append(f.deleteInputs, in)
	if f.err != nil {
		return nil, f.err
	}
	return &s3.DeleteObjectsOutput{Errors: f.deleteErrors}, nil
}

type fakePresigner struct {
	lastTTL time.Duration
}

func (p *fakePresigner) expires(optFns []func(*s3.PresignOptions)) {
	var opts s3.PresignOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	p.lastTTL = opts.Expires
}

func (p *fakePresigner) PresignPutObject(_ context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	p.expires(optFns)
	return &v4.PresignedHTTPRequest{URL: fmt.Sprintf("https://%s.s3/%s?put", aws.ToString(in.Bucket), aws.ToString(in.Key)), Method: "PUT"}, nil
}

func (p *fakePresigner) PresignGetObject(_ context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	p.expires(optFns)
	return &v4.PresignedHTTPRequest{URL: fmt.Sprintf("https://%s.s3/%s?get", aws.ToString(in.Bucket), aws.ToString(in.Key)), Method: "GET"}, nil
}

func TestS3ImageStore_Presign(t *testing.T) {
	presigner := &fakePresigner{}
	images := NewS3ImageStore(&fakeS3{}, presigner, "bucket")

	url, err := images.PresignUpload(context.Background(), "u/t1/photo.png", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.s3/u/t1/photo.png?put", url)
	assert.Equal(t, time.Minute, presigner.lastTTL)

	url, err = images.PresignDownload(context.Background(), "u/t1/photo.png", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, "https://bucket.s3/u/t1/photo.png?get", url)
}

func TestS3ImageStore_ListKeysAcrossPages(t *testing.T) {
	fake := &fakeS3{pages: []*s3.ListObjectsV2Output{
		{
			Contents:              []s3types.Object{{Key: aws.String("u/t1/a.png")}},
			IsTruncated:           aws.Bool(true),
			NextContinuationToken: aws.String("next"),
		},
		{
			Contents: []s3types.Object{{Key: aws.String("u/t2/b.png")}},
		},
	}}
	images := NewS3ImageStore(fake, &fakePresigner{}, "bucket")

	keys, err := images.ListKeys(context.Background(), "u/")
	require.NoError(t, err)
	assert.Equal(t, []string{"u/t1/a.png", "u/t2/b.png"}, keys)
}

func TestS3ImageStore_DeleteKeysBatches(t *testing.T) {
	fake := &fakeS3{}
	images := NewS3ImageStore(fake, &fakePresigner{}, "bucket")

	keys := make([]string, 1500)
	for i := range keys {
		keys[i] = fmt.Sprintf("u/t1/%d.png", i)
	}

	require.NoError(t, images.DeleteKeys(context.Background(), keys))
	require.Len(t, fake.deleteInputs, 2)
	assert.Len(t, fake.deleteInputs[0].Delete.Objects, 1000)
	assert.Len(t, fake.deleteInputs[1].Delete.Objects, 500)
}

func TestS3ImageStore_DeleteNothingIsNoop(t *testing.T) {
	fake := &fakeS3{}
	images := NewS3ImageStore(fake, &fakePresigner{}, "bucket")

	require.NoError(t, images.DeleteKeys(context.Background(), nil))
	assert.Empty(t, fake.deleteInputs)
}

func TestS3ImageStore_PartialDeleteFailure(t *testing.T) {
	fake := &fakeS3{deleteErrors: []s3types.Error{{Key: aws.String("u/t1/a.png"), Message: aws.String("AccessDenied")}}}
	images := NewS3ImageStore(fake, &fakePresigner{}, "bucket")

	err := images.DeleteKeys(context.Background(), []string{"u/t1/a.png"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeStoreInternal))
}

func TestS3ImageStore_UnknownErrorIsTeapot(t *testing.T) {
	fake := &fakeS3{err: &smithy.GenericAPIError{Code: "SlowDownPlease"}}
	images := NewS3ImageStore(fake, &fakePresigner{}, "bucket")

	_, err := images.ListKeys(context.Background(), "u/")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnmappedStore))
}

func TestObjectKey(t *testing.T) {
	assert.Equal(t, "u/t1/photo.png", ObjectKey("u", "t1", "photo.png"))
}

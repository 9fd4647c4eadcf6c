package snapshot

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = b
	return &s3.PutObjectOutput{}, nil
}

func TestS3Uploader_Upload(t *testing.T) {
	p := &fakePutter{}
	u := &S3Uploader{client: p, bucket: "snaps"}

	err := u.Upload(context.Background(), "snapshots/x.cbor.xz", bytes.NewReader([]byte("data")), 4)
	require.NoError(t, err)
	assert.Equal(t, "snaps", aws.ToString(p.in.Bucket))
	assert.Equal(t, "snapshots/x.cbor.xz", aws.ToString(p.in.Key))
	assert.Equal(t, int64(4), aws.ToInt64(p.in.ContentLength))
	assert.Equal(t, []byte("data"), p.body)
}

func TestNewS3Uploader(t *testing.T) {
	u, err := NewS3Uploader(context.Background(), S3Options{
		Region:       "us-east-1",
		AccessKey:    "admin",
		SecretKey:    "secret",
		BaseEndpoint: "http://127.0.0.1:9000/",
		Bucket:       "snaps",
	})
	require.NoError(t, err)
	assert.Equal(t, "snaps", u.bucket)

	c, ok := u.client.(*s3.Client)
	require.True(t, ok)
	assert.True(t, c.Options().UsePathStyle)
}

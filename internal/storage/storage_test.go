package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signdesk/internal/config"
	"signdesk/internal/logging"
)

func TestPutDefaultsContentType(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	st := &s3Storage{client: fake, bucket: "pdfs"}

	info, err := st.Put(context.Background(), "signed/doc-1/x.pdf", strings.NewReader("%PDF"), PutObjectOptions{Size: 4})

	require.NoError(t, err)
	assert.Equal(t, DefaultContentType, info.ContentType)
	assert.Equal(t, DefaultContentType, aws.ToString(fake.putIn.ContentType))
}

func TestNewMinIO_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinIOConfig
		want string
	}{
		{"missing endpoint", config.MinIOConfig{AccessKey: "a", SecretKey: "b", Bucket: "c"}, "minio endpoint is required"},
		{"missing credentials", config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "c"}, "minio credentials are required"},
		{"missing bucket", config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}, "minio bucket is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMinIO(context.Background(), tt.cfg, logging.Discard())
			assert.EqualError(t, err, tt.want)
		})
	}
}

package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sbilibin2017/audio-vault/internal/config"
)

func newTestS3Store(t *testing.T, endpoint string, maxSize int64) (*S3Store, *MockS3API) {
	ctrl := gomock.NewController(t)
	client := NewMockS3API(ctrl)
	store := NewS3Store(client, config.S3Config{
		Region:   "eu-west-1",
		Bucket:   "tracks",
		Endpoint: endpoint,
	}, maxSize)
	return store, client
}

func TestS3Store_Put(t *testing.T) {
	store, client := newTestS3Store(t, "", 0)

	client.EXPECT().
		PutObject(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			assert.Equal(t, "tracks", aws.ToString(in.Bucket))
			assert.Equal(t, "7/song.mp3", aws.ToString(in.Key))
			assert.Equal(t, "audio/mpeg", aws.ToString(in.ContentType))
			assert.Equal(t, int64(4), aws.ToInt64(in.ContentLength))
			assert.Equal(t, "7", in.Metadata["userId"])
			body, err := io.ReadAll(in.Body)
			require.NoError(t, err)
			assert.Equal(t, "data", string(body))
			return &s3.PutObjectOutput{}, nil
		})

	file, err := store.Put(context.Background(), 7, "song.mp3", "audio/mpeg", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "song.mp3", file.Name)
	assert.Equal(t, int64(4), file.Size)
	assert.Equal(t, "https://tracks.s3.eu-west-1.amazonaws.com/7/song.mp3", file.Location)
}

func TestS3Store_PutCustomEndpointLocation(t *testing.T) {
	store, client := newTestS3Store(t, "http://127.0.0.1:9000/", 0)

	client.EXPECT().PutObject(gomock.Any(), gomock.Any()).Return(&s3.PutObjectOutput{}, nil)

	file, err := store.Put(context.Background(), 3, "my song.mp3", "audio/mpeg", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:9000/tracks/3/my%20song.mp3", file.Location)
}

func TestS3Store_PutRejectionsNeverCallS3(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		body        []byte
		wantErr     error
	}{
		{"too large", "big.mp3", "audio/mpeg", bytes.Repeat([]byte{1}, 9), ErrPayloadTooLarge},
		{"not audio", "doc.txt", "text/plain", []byte("x"), ErrUnsupportedMediaType},
		{"bad name", "a/b.mp3", "audio/mpeg", []byte("x"), ErrInvalidFileName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newTestS3Store(t, "", 8)

			_, err := store.Put(context.Background(), 1, tt.fileName, tt.contentType, bytes.NewReader(tt.body))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestS3Store_PutClientError(t *testing.T) {
	store, client := newTestS3Store(t, "", 0)
	client.EXPECT().PutObject(gomock.Any(), gomock.Any()).Return(nil, errors.New("boom"))

	_, err := store.Put(context.Background(), 1, "a.mp3", "audio/mpeg", strings.NewReader("x"))
	assert.EqualError(t, err, "boom")
}

func TestS3Store_ListPaginatesAndSorts(t *testing.T) {
	store, client := newTestS3Store(t, "", 0)

	gomock.InOrder(
		client.EXPECT().
			ListObjectsV2(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
				assert.Equal(t, "5/", aws.ToString(in.Prefix))
				assert.Nil(t, in.ContinuationToken)
				return &s3.ListObjectsV2Output{
					Contents: []types.Object{
						{Key: aws.String("5/b.mp3"), Size: aws.Int64(2)},
					},
					IsTruncated:           aws.Bool(true),
					NextContinuationToken: aws.String("next"),
				}, nil
			}),
		client.EXPECT().
			ListObjectsV2(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
				assert.Equal(t, "next", aws.ToString(in.ContinuationToken))
				return &s3.ListObjectsV2Output{
					Contents: []types.Object{
						{Key: aws.String("5/a.mp3"), Size: aws.Int64(1)},
						{Key: aws.String("5/nested/c.mp3"), Size: aws.Int64(3)},
					},
					IsTruncated: aws.Bool(false),
				}, nil
			}),
	)

	files, err := store.List(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.mp3", files[0].Name)
	assert.Equal(t, int64(1), files[0].Size)
	assert.Equal(t, "b.mp3", files[1].Name)
}

func TestS3Store_ListEmpty(t *testing.T) {
	store, client := newTestS3Store(t, "", 0)
	client.EXPECT().ListObjectsV2(gomock.Any(), gomock.Any()).Return(&s3.ListObjectsV2Output{}, nil)

	files, err := store.List(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, files)
	assert.Empty(t, files)
}

func TestS3Store_Open(t *testing.T) {
	store, client := newTestS3Store(t, "", 0)

	client.EXPECT().
		GetObject(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			assert.Equal(t, "2/a.wav", aws.ToString(in.Key))
			return &s3.GetObjectOutput{
				Body:          io.NopCloser(strings.NewReader("wave")),
				ContentLength: aws.Int64(4),
				ContentType:   aws.String("audio/wav"),
			}, nil
		})

	stream, err := store.Open(context.Background(), 2, "a.wav")
	require.NoError(t, err)
	defer stream.Body.Close()

	data, err := io.ReadAll(stream.Body)
	require.NoError(t, err)
	assert.Equal(t, "wave", string(data))
	assert.Equal(t, int64(4), stream.Size)
	assert.Equal(t, "audio/wav", stream.ContentType)
}

func TestS3Store_OpenMissing(t *testing.T) {
	store, client := newTestS3Store(t, "", 0)
	client.EXPECT().GetObject(gomock.Any(), gomock.Any()).Return(nil, &types.NoSuchKey{})

	_, err := store.Open(context.Background(), 2, "a.wav")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestS3Store_Delete(t *testing.T) {
	store, client := newTestS3Store(t, "", 0)

	gomock.InOrder(
		client.EXPECT().HeadObject(gomock.Any(), gomock.Any()).Return(&s3.HeadObjectOutput{}, nil),
		client.EXPECT().
			DeleteObject(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
				assert.Equal(t, "tracks", aws.ToString(in.Bucket))
				assert.Equal(t, "9/a.mp3", aws.ToString(in.Key))
				return &s3.DeleteObjectOutput{}, nil
			}),
		client.EXPECT().HeadObject(gomock.Any(), gomock.Any()).Return(nil, &types.NotFound{}),
	)

	require.NoError(t, store.Delete(context.Background(), 9, "a.mp3"))
	assert.ErrorIs(t, store.Delete(context.Background(), 9, "a.mp3"), ErrFileNotFound)
}

func TestS3Store_DeleteHeadError(t *testing.T) {
	store, client := newTestS3Store(t, "", 0)
	client.EXPECT().HeadObject(gomock.Any(), gomock.Any()).Return(nil, errors.New("denied"))

	err := store.Delete(context.Background(), 9, "a.mp3")
	assert.EqualError(t, err, "denied")
}

func TestNewS3Client(t *testing.T) {
	client, err := NewS3Client(context.Background(), config.S3Config{
		AccessKeyID:     "key",
		SecretAccessKey: "secret",
		Region:          "us-east-1",
		Bucket:          "tracks",
		Endpoint:        "http://127.0.0.1:9000",
	})
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.True(t, client.Options().UsePathStyle)
	assert.Equal(t, "http://127.0.0.1:9000", aws.ToString(client.Options().BaseEndpoint))
	assert.Equal(t, "us-east-1", client.Options().Region)
}

package store

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 is an in-memory object store keyed by bucket/key.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	getErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	data, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func TestS3Backend_RoundTrip(t *testing.T) {
	t.Parallel()
	fake := newFakeS3()
	roundTrip(t, NewS3Backend(fake, "blog", "viewstats/aggregate.json"))

	assert.Contains(t, fake.objects, "blog/viewstats/aggregate.json")
}

func TestS3Backend_NotFoundReadsEmpty(t *testing.T) {
	t.Parallel()
	fake := newFakeS3()
	fake.getErr = &types.NotFound{}

	state, err := NewS3Backend(fake, "blog", "k").Read(context.Background())
	require.NoError(t, err)
	assert.Empty(t, state.Views)
}

func TestS3Backend_ReadError(t *testing.T) {
	t.Parallel()
	fake := newFakeS3()
	fake.getErr = errors.New("access denied")

	_, err := NewS3Backend(fake, "blog", "k").Read(context.Background())
	assert.ErrorContains(t, err, "access denied")
}

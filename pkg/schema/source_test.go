package schema

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	objects map[string]string
	gotKey  string
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.gotKey = aws.ToString(in.Bucket) + "/" + aws.ToString(in.Key)
	body, ok := f.objects[f.gotKey]
	if !ok {
		return nil, errors.New("NoSuchKey")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func TestLoaderFile(t *testing.T) {
	s, err := NewLoader().Load(context.Background(), "testdata/products.yaml")
	require.NoError(t, err)
	assert.Len(t, s.Elements, 8)
}

func TestLoaderFileMissing(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), "testdata/missing.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoaderRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/bad.json"
	require.NoError(t, os.WriteFile(path, []byte(`{"elements":[{"type":"TEXT"}]}`), 0o600))

	_, err := NewLoader().Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestLoaderS3(t *testing.T) {
	data, err := os.ReadFile("testdata/products.json")
	require.NoError(t, err)

	fake := &fakeS3{objects: map[string]string{"schemas/forms/products.json": string(data)}}
	loader := NewLoader(WithS3(fake))

	s, err := loader.Load(context.Background(), "s3://schemas/forms/products.json")
	require.NoError(t, err)
	assert.Equal(t, "schemas/forms/products.json", fake.gotKey)
	assert.Len(t, s.Elements, 8)

	_, err = loader.Load(context.Background(), "s3://schemas/forms/other.json")
	assert.ErrorContains(t, err, "NoSuchKey")
}

func TestLoaderUnsupportedSources(t *testing.T) {
	tests := []string{
		"s3://bucket-only",
		"https://example.com/schema.json",
	}
	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			_, err := NewLoader(WithS3(&fakeS3{})).Load(context.Background(), src)
			assert.ErrorIs(t, err, ErrUnsupportedSource)
		})
	}

	_, err := NewLoader().Load(context.Background(), "s3://bucket/key.json")
	assert.ErrorIs(t, err, ErrUnsupportedSource, "s3 without a client")
}

package s3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"lifeway-backend/internal/shared/storage/object"
)

type fakeS3 struct {
	objects map[string][]byte
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(params.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(params.Key)] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := f.objects[aws.ToString(params.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func TestApplyPrefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prefix string
		key    string
		want   string
	}{
		{name: "no prefix", prefix: "", key: "forms/a.json", want: "forms/a.json"},
		{name: "simple prefix", prefix: "lifeway", key: "forms/a.json", want: "lifeway/forms/a.json"},
		{name: "prefix trailing slash", prefix: "lifeway/", key: "forms/a.json", want: "lifeway/forms/a.json"},
		{name: "prefix and key slashes", prefix: "/lifeway/", key: "/forms/a.json", want: "lifeway/forms/a.json"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := applyPrefix(tt.prefix, tt.key); got != tt.want {
				t.Fatalf("applyPrefix(%q, %q) = %q, want %q", tt.prefix, tt.key, got, tt.want)
			}
		})
	}
}

func TestPutGetRoundTripsThroughPrefix(t *testing.T) {
	fake := &fakeS3{objects: map[string][]byte{}}
	store := NewWithClient(fake, "bucket", "/env/")

	n, err := store.Put(context.Background(), "forms/a.json", "application/json", bytes.NewReader([]byte(`{"x":true}`)))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if n != 10 {
		t.Fatalf("expected 10 bytes counted, got %d", n)
	}
	if _, ok := fake.objects["env/forms/a.json"]; !ok {
		t.Fatalf("expected prefixed key, got %v", fake.objects)
	}

	if _, err := store.Get(context.Background(), "forms/missing.json"); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

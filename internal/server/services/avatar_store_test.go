package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmitrijs2005/taskkeeper/internal/common"
	sc "github.com/dmitrijs2005/taskkeeper/internal/server/config"
)

type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	err     error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = b
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	delete(f.objects, aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3AvatarStore_PutGetDelete(t *testing.T) {
	fake := newFakeS3()
	store := &S3AvatarStore{client: fake, bucket: "avatars"}
	ctx := context.Background()

	if err := store.Put(ctx, "k1", "image/png", pngBytes); err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if got := fake.types["k1"]; got != "image/png" {
		t.Fatalf("content type = %q, want image/png", got)
	}
	if _, ok := fake.objects["avatars/k1"]; !ok {
		t.Fatalf("object not stored under bucket")
	}

	got, err := store.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if !bytes.Equal(got, pngBytes) {
		t.Fatalf("Get returned %q", got)
	}

	if err := store.Delete(ctx, "k1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, err := store.Get(ctx, "k1"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound after delete, got %v", err)
	}
}

func TestS3AvatarStore_Errors(t *testing.T) {
	fake := newFakeS3()
	fake.err = errors.New("connection refused")
	store := &S3AvatarStore{client: fake, bucket: "avatars"}
	ctx := context.Background()

	if err := store.Put(ctx, "k", "image/png", pngBytes); !errors.Is(err, fake.err) {
		t.Fatalf("Put: want wrapped error, got %v", err)
	}
	if _, err := store.Get(ctx, "k"); !errors.Is(err, fake.err) || errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("Get: want wrapped error, got %v", err)
	}
	if err := store.Delete(ctx, "k"); !errors.Is(err, fake.err) {
		t.Fatalf("Delete: want wrapped error, got %v", err)
	}
}

func TestNewS3AvatarStore_SuccessAndError(t *testing.T) {
	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
	})

	cfg := &sc.Config{
		S3Region:       "eu-west-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "avatars",
	}

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		var lo awsconfig.LoadOptions
		for _, fn := range optFns {
			if err := fn(&lo); err != nil {
				t.Fatalf("load options fn error: %v", err)
			}
		}
		if lo.Region != "eu-west-1" {
			t.Fatalf("region not applied: %q", lo.Region)
		}
		if lo.Credentials == nil {
			t.Fatalf("credentials provider not set")
		}
		return aws.Config{}, nil
	}

	var opts s3.Options
	newS3ClientFromConfig = func(c aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		for _, fn := range optFns {
			fn(&opts)
		}
		return &s3.Client{}
	}

	store, err := NewS3AvatarStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewS3AvatarStore error: %v", err)
	}
	if store.bucket != "avatars" {
		t.Fatalf("bucket = %q", store.bucket)
	}
	if opts.BaseEndpoint == nil || *opts.BaseEndpoint != "http://127.0.0.1:9000" {
		t.Fatalf("BaseEndpoint not applied: %v", opts.BaseEndpoint)
	}
	if !opts.UsePathStyle {
		t.Fatalf("UsePathStyle not set")
	}

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("no config")
	}
	if _, err := NewS3AvatarStore(context.Background(), cfg); err == nil {
		t.Fatalf("expected error from config loader")
	}
}

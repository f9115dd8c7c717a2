package fsxs3

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/Abraxas-365/careerqr/pkg/fsx"
)

// S3FileSystem implements fsx.FileSystem on top of an S3 bucket.
// All paths are keys relative to the configured prefix.
type S3FileSystem struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3FileSystem creates an S3-backed file system rooted at prefix
func NewS3FileSystem(client *s3.Client, bucket, prefix string) *S3FileSystem {
	return &S3FileSystem{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

func (f *S3FileSystem) key(p string) string {
	if f.prefix == "" {
		return p
	}
	return path.Join(f.prefix, p)
}

// ReadFile reads the whole object into memory
func (f *S3FileSystem) ReadFile(ctx context.Context, p string) ([]byte, error) {
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key(p)),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

// ReadFileStream returns the object body as a stream; the caller closes it
func (f *S3FileSystem) ReadFileStream(ctx context.Context, p string) (io.ReadCloser, error) {
	out, err := f.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key(p)),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// WriteFile writes data as a single object
func (f *S3FileSystem) WriteFile(ctx context.Context, p string, data []byte) error {
	return f.WriteFileStream(ctx, p, bytes.NewReader(data))
}

// WriteFileStream uploads the reader's contents as a single object
func (f *S3FileSystem) WriteFileStream(ctx context.Context, p string, r io.Reader) error {
	// PutObject needs a seekable body for signing; buffer the stream
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	_, err = f.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key(p)),
		Body:   bytes.NewReader(data),
	})
	return err
}

// DeleteFile removes an object
func (f *S3FileSystem) DeleteFile(ctx context.Context, p string) error {
	_, err := f.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key(p)),
	})
	return err
}

// Exists checks whether an object is present
func (f *S3FileSystem) Exists(ctx context.Context, p string) (bool, error) {
	_, err := f.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key(p)),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Stat returns object metadata
func (f *S3FileSystem) Stat(ctx context.Context, p string) (*fsx.FileInfo, error) {
	out, err := f.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(f.key(p)),
	})
	if err != nil {
		return nil, err
	}
	info := &fsx.FileInfo{Path: p}
	if out.ContentLength != nil {
		info.Size = *out.ContentLength
	}
	if out.LastModified != nil {
		info.LastModified = *out.LastModified
	}
	if out.ContentType != nil {
		info.ContentType = *out.ContentType
	}
	return info, nil
}

// Join joins path segments with the object-key separator
func (f *S3FileSystem) Join(parts ...string) string {
	return path.Join(parts...)
}

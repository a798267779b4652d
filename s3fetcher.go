package elevation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"path"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// An S3TileFetcher fetches tiles from an S3 bucket.
type S3TileFetcher struct {
	s3            s3iface.S3API
	bucket        string
	prefix        string
	extension     string
	requesterPays bool
}

// NewS3TileFetcher returns a new S3TileFetcher that fetches tiles from
// s3://{bucket}/{prefix}/{z}/{x}/{y}.txt.
func NewS3TileFetcher(s3 s3iface.S3API, bucket, prefix string, requesterPays bool) *S3TileFetcher {
	return &S3TileFetcher{
		s3:            s3,
		bucket:        bucket,
		prefix:        prefix,
		extension:     ".txt",
		requesterPays: requesterPays,
	}
}

// Key returns the object key of the tile at tileKey.
func (f *S3TileFetcher) Key(tileKey TileKey) string {
	return path.Join(f.prefix, tileKey.String()+f.extension)
}

func (f *S3TileFetcher) FetchTile(ctx context.Context, tileKey TileKey) ([]byte, error) {
	s3Key := f.Key(tileKey)

	input := &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(s3Key),
	}
	if f.requesterPays {
		input.RequestPayer = aws.String(s3.RequestPayerRequester)
	}

	resp, err := f.s3.GetObjectWithContext(ctx, input)
	var awsErr awserr.Error
	switch {
	case errors.As(err, &awsErr) && awsErr.Code() == s3.ErrCodeNoSuchKey:
		return nil, fmt.Errorf("s3://%s/%s: %w", f.bucket, s3Key, fs.ErrNotExist)
	case err != nil:
		return nil, fmt.Errorf("error fetching s3://%s/%s: %w", f.bucket, s3Key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading s3://%s/%s: %w", f.bucket, s3Key, err)
	}

	log.Printf("Retrieved s3://%s/%s", f.bucket, s3Key)

	return data, nil
}

package documents

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/claimflow/claimflow-go/internal/domain/claims"
)

// ObjectPutter is the subset of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Presigner defines the interface for presigning S3 downloads.
type Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Store keeps attachments in an S3 bucket.
type S3Store struct {
	Client     ObjectPutter
	Presigner  Presigner
	Bucket     string
	Prefix     string
	PresignTTL time.Duration
}

// NewS3Store creates an S3 store backed by client.
func NewS3Store(client *s3.Client, bucket, prefix string, ttl time.Duration) *S3Store {
	return &S3Store{
		Client:     client,
		Presigner:  s3.NewPresignClient(client),
		Bucket:     bucket,
		Prefix:     prefix,
		PresignTTL: ttl,
	}
}

// Put uploads body under a new key and returns an s3:// locator. The put is
// conditional, so an existing object is never replaced.
func (s *S3Store) Put(ctx context.Context, claimID, name string, body io.Reader) (claims.Document, error) {
	key, clean, err := newKey(s.Prefix, claimID, name)
	if err != nil {
		return claims.Document{}, err
	}

	_, err = s.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.Bucket),
		Key:                  aws.String(key),
		Body:                 body,
		IfNoneMatch:          aws.String("*"),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
		Metadata: map[string]string{
			"claim_id": claimID,
		},
	})
	if err != nil {
		return claims.Document{}, fmt.Errorf("%w: put %s: %v", ErrDocumentStore, key, err)
	}

	return claims.Document{Name: clean, Locator: fmt.Sprintf("s3://%s/%s", s.Bucket, key)}, nil
}

// Link generates a time-limited download URL for an s3:// locator.
func (s *S3Store) Link(ctx context.Context, locator string) (string, error) {
	rest, ok := strings.CutPrefix(locator, "s3://")
	if !ok {
		return "", fmt.Errorf("%w: not an s3 locator %q", claims.ErrValidation, locator)
	}
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", fmt.Errorf("%w: malformed s3 locator %q", claims.ErrValidation, locator)
	}

	ttl := s.PresignTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	req, err := s.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, func(o *s3.PresignOptions) { o.Expires = ttl })
	if err != nil {
		return "", fmt.Errorf("%w: presign %s: %v", ErrDocumentStore, key, err)
	}
	return req.URL, nil
}

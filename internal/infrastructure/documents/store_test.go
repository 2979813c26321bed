package documents

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claimflow/claimflow-go/internal/domain/claims"
)

func TestBuildAndParseKey(t *testing.T) {
	key, err := BuildKey("uploads/", "CLM-1", "01HX0A", "../../etc/receipt.pdf")
	require.NoError(t, err)
	assert.Equal(t, "uploads/claims/CLM-1/01HX0A-receipt.pdf", key)

	claimID, objectID, name, ok := ParseKey("uploads", key)
	require.True(t, ok)
	assert.Equal(t, "CLM-1", claimID)
	assert.Equal(t, "01HX0A", objectID)
	assert.Equal(t, "receipt.pdf", name)

	_, _, _, ok = ParseKey("other", key)
	assert.False(t, ok)
	_, _, _, ok = ParseKey("", "claims/CLM-1")
	assert.False(t, ok)
	_, _, _, ok = ParseKey("", "claims/CLM-1/receipt.pdf")
	assert.False(t, ok)

	_, err = BuildKey("", "CLM-1", "01HX0A", "  ")
	assert.ErrorIs(t, err, claims.ErrValidation)
	_, err = BuildKey("", "CLM/1", "01HX0A", "a.pdf")
	assert.ErrorIs(t, err, claims.ErrValidation)
	_, err = BuildKey("", "CLM-1", "", "a.pdf")
	assert.ErrorIs(t, err, claims.ErrValidation)
}

func TestLocalStorePut(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	doc, err := store.Put(context.Background(), "CLM-1", "photo.jpg", strings.NewReader("jpeg bytes"))
	require.NoError(t, err)
	assert.Equal(t, "photo.jpg", doc.Name)
	require.True(t, strings.HasPrefix(doc.Locator, "file://"))

	data, err := os.ReadFile(strings.TrimPrefix(doc.Locator, "file://"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))

	link, err := store.Link(context.Background(), doc.Locator)
	require.NoError(t, err)
	assert.Equal(t, doc.Locator, link)
	_, err = store.Link(context.Background(), "s3://b/k")
	assert.ErrorIs(t, err, claims.ErrValidation)
}

func TestLocalStoreKeepsSameNamedUploadsApart(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	first, err := store.Put(context.Background(), "CLM-1", "report.pdf", strings.NewReader("FIRST"))
	require.NoError(t, err)
	second, err := store.Put(context.Background(), "CLM-1", "report.pdf", strings.NewReader("SECOND"))
	require.NoError(t, err)

	assert.Equal(t, "report.pdf", first.Name)
	assert.Equal(t, "report.pdf", second.Name)
	assert.NotEqual(t, first.Locator, second.Locator)

	data, err := os.ReadFile(strings.TrimPrefix(first.Locator, "file://"))
	require.NoError(t, err)
	assert.Equal(t, "FIRST", string(data))
	data, err = os.ReadFile(strings.TrimPrefix(second.Locator, "file://"))
	require.NoError(t, err)
	assert.Equal(t, "SECOND", string(data))
}

type fakeS3 struct {
	puts []*s3.PutObjectInput
	body string
	err  error
}

func (f *fakeS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	b, _ := io.ReadAll(params.Body)
	f.body = string(b)
	f.puts = append(f.puts, params)
	return &s3.PutObjectOutput{}, nil
}

type fakePresigner struct {
	expires time.Duration
}

func (f *fakePresigner) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
	opts := &s3.PresignOptions{}
	for _, fn := range optFns {
		fn(opts)
	}
	f.expires = opts.Expires
	return &v4.PresignedHTTPRequest{URL: "https://" + *params.Bucket + ".example/" + *params.Key + "?sig"}, nil
}

func TestS3StorePut(t *testing.T) {
	client := &fakeS3{}
	store := &S3Store{Client: client, Presigner: &fakePresigner{}, Bucket: "claims-bucket", Prefix: "docs"}

	doc, err := store.Put(context.Background(), "CLM-9", "estimate.pdf", strings.NewReader("pdf"))
	require.NoError(t, err)
	assert.Equal(t, "estimate.pdf", doc.Name)

	require.Len(t, client.puts, 1)
	put := client.puts[0]
	assert.Equal(t, "s3://claims-bucket/"+*put.Key, doc.Locator)
	claimID, _, name, ok := ParseKey("docs", *put.Key)
	require.True(t, ok)
	assert.Equal(t, "CLM-9", claimID)
	assert.Equal(t, "estimate.pdf", name)
	assert.Equal(t, "*", *put.IfNoneMatch)
	assert.Equal(t, "CLM-9", put.Metadata["claim_id"])
	assert.Equal(t, "pdf", client.body)

	again, err := store.Put(context.Background(), "CLM-9", "estimate.pdf", strings.NewReader("pdf"))
	require.NoError(t, err)
	assert.NotEqual(t, doc.Locator, again.Locator)
}

func TestS3StorePutFailure(t *testing.T) {
	store := &S3Store{Client: &fakeS3{err: errors.New("throttled")}, Bucket: "b"}
	_, err := store.Put(context.Background(), "CLM-9", "a.pdf", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrDocumentStore)
}

func TestS3StoreLink(t *testing.T) {
	presigner := &fakePresigner{}
	store := &S3Store{Client: &fakeS3{}, Presigner: presigner, Bucket: "b", PresignTTL: time.Minute}

	url, err := store.Link(context.Background(), "s3://b/claims/CLM-1/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, "https://b.example/claims/CLM-1/a.pdf?sig", url)
	assert.Equal(t, time.Minute, presigner.expires)

	_, err = store.Link(context.Background(), "file:///tmp/a.pdf")
	assert.ErrorIs(t, err, claims.ErrValidation)
	_, err = store.Link(context.Background(), "s3://bucket-only")
	assert.ErrorIs(t, err, claims.ErrValidation)
}

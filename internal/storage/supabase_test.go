package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	put     *s3.PutObjectInput
	body    string
	deleted string
	err     error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.put = params
	b, _ := io.ReadAll(params.Body)
	f.body = string(b)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, params *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleted = aws.ToString(params.Key)
	return &s3.DeleteObjectOutput{}, f.err
}

func TestUploadProof(t *testing.T) {
	client := &fakeS3{}
	store := NewSupabaseStorage(client, "donation-proofs", "https://proj.supabase.co/storage/v1/object/public/")

	url, err := store.UploadProof(context.Background(), "don1", "Receipt.JPG", "image/jpeg", strings.NewReader("jpegbytes"))
	require.NoError(t, err)

	require.NotNil(t, client.put)
	key := aws.ToString(client.put.Key)
	assert.True(t, strings.HasPrefix(key, "donations/don1/"), key)
	assert.True(t, strings.HasSuffix(key, ".jpg"), key)
	assert.Equal(t, "donation-proofs", aws.ToString(client.put.Bucket))
	assert.Equal(t, "image/jpeg", aws.ToString(client.put.ContentType))
	assert.Equal(t, "jpegbytes", client.body)
	assert.Equal(t, "https://proj.supabase.co/storage/v1/object/public/donation-proofs/"+key, url)
}

func TestUploadProofError(t *testing.T) {
	store := NewSupabaseStorage(&fakeS3{err: errors.New("boom")}, "b", "https://x")
	_, err := store.UploadProof(context.Background(), "don1", "a.png", "image/png", strings.NewReader(""))
	assert.ErrorContains(t, err, "don1")
}

func TestDeleteFile(t *testing.T) {
	client := &fakeS3{}
	store := NewSupabaseStorage(client, "b", "https://x")
	require.NoError(t, store.DeleteFile(context.Background(), "donations/d/x.png"))
	assert.Equal(t, "donations/d/x.png", client.deleted)
}

func TestProofKeyStripsDirectories(t *testing.T) {
	key := ProofKey("don9", "../../etc/passwd.PNG")
	assert.True(t, strings.HasPrefix(key, "donations/don9/"))
	assert.True(t, strings.HasSuffix(key, ".png"))
	assert.NotContains(t, key, "..")
}

func TestDeleteProofRemovesUploadedObject(t *testing.T) {
	client := &fakeS3{}
	store := NewSupabaseStorage(client, "donation-proofs", "https://proj.supabase.co/storage/v1/object/public")

	url, err := store.UploadProof(context.Background(), "don1", "a.png", "image/png", strings.NewReader("png"))
	require.NoError(t, err)

	require.NoError(t, store.DeleteProof(context.Background(), url))
	assert.Equal(t, aws.ToString(client.put.Key), client.deleted)
}

func TestDeleteProofIgnoresForeignURL(t *testing.T) {
	client := &fakeS3{}
	store := NewSupabaseStorage(client, "donation-proofs", "https://proj.supabase.co/storage/v1/object/public")

	require.NoError(t, store.DeleteProof(context.Background(), "https://cdn.example.com/p.png"))
	assert.Empty(t, client.deleted)

	_, ok := store.KeyFromURL("https://proj.supabase.co/storage/v1/object/public/donation-proofs/")
	assert.False(t, ok)
}

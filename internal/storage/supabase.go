package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"strot/internal/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the part of the S3 client used for uploads.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// SupabaseStorage stores delivery proof images in a Supabase Storage bucket
// through its S3 compatible endpoint.
type SupabaseStorage struct {
	client        ObjectPutter
	bucketName    string
	publicBaseURL string
}

// NewS3Client builds an S3 client pointed at the Supabase endpoint, e.g.
// https://<project>.supabase.co/storage/v1/s3.
func NewS3Client(endpoint, region, accessKeyID, secretKey string) *s3.Client {
	return s3.New(s3.Options{
		BaseEndpoint: aws.String(endpoint),
		Region:       region,
		UsePathStyle: true,
		Credentials:  credentials.NewStaticCredentialsProvider(accessKeyID, secretKey, ""),
	})
}

func NewSupabaseStorage(client ObjectPutter, bucketName, publicBaseURL string) *SupabaseStorage {
	return &SupabaseStorage{
		client:        client,
		bucketName:    bucketName,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
	}
}

// UploadProof stores a proof image for donationID and returns its public URL.
func (s *SupabaseStorage) UploadProof(ctx context.Context, donationID, fileName, contentType string, body io.Reader) (string, error) {
	key := ProofKey(donationID, fileName)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload proof for donation %s: %w", donationID, err)
	}

	return s.PublicURL(key), nil
}

// DeleteFile removes an object from the bucket
func (s *SupabaseStorage) DeleteFile(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	return utils.ErrorWrapOrNil(err, "failed to delete file")
}

// DeleteProof removes a proof previously returned by UploadProof. URLs outside
// the bucket are ignored.
func (s *SupabaseStorage) DeleteProof(ctx context.Context, proofURL string) error {
	key, ok := s.KeyFromURL(proofURL)
	if !ok {
		return nil
	}
	return s.DeleteFile(ctx, key)
}

// KeyFromURL reverses PublicURL.
func (s *SupabaseStorage) KeyFromURL(publicURL string) (string, bool) {
	prefix := fmt.Sprintf("%s/%s/", s.publicBaseURL, s.bucketName)
	key, ok := strings.CutPrefix(publicURL, prefix)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}

// PublicURL returns the public URL for a stored object
func (s *SupabaseStorage) PublicURL(key string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucketName, key)
}

// ProofKey namespaces proofs by donation and keeps the original extension.
func ProofKey(donationID, fileName string) string {
	ext := strings.ToLower(path.Ext(path.Base(fileName)))
	return fmt.Sprintf("donations/%s/%s%s", donationID, utils.NanoIDSize(12), ext)
}

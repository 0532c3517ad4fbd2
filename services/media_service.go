package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// S3Presigner is the slice of the S3 presign client the media service uses.
type S3Presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (string, error)
}

// presignAdapter narrows *s3.PresignClient to S3Presigner.
type presignAdapter struct{ client *s3.PresignClient }

func (a presignAdapter) PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (string, error) {
	out, err := a.client.PresignGetObject(ctx, params, optFns...)
	if err != nil {
		return "", err
	}
	return out.URL, nil
}

// NewS3Presigner wraps the real presign client.
func NewS3Presigner(client *s3.Client) S3Presigner {
	return presignAdapter{client: s3.NewPresignClient(client)}
}

// InitializeS3Client builds the S3 client from the ambient AWS configuration.
func InitializeS3Client(ctx context.Context, region string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

// MediaService resolves photo references into servable URLs. Stored photos
// live in S3 under their key; the blur variant is a derived object under
// blurred/, written by the upload pipeline, so a blurred URL can never leak
// the original. External persona photo URLs are wrapped in the image proxy,
// which applies the blur transform on the fly.
type MediaService struct {
	Presigner S3Presigner
	Bucket    string
	ProxyBase string
	Expiry    time.Duration
	Log       zerolog.Logger
}

func NewMediaService(presigner S3Presigner, bucket, proxyBase string, expiry time.Duration, log zerolog.Logger) *MediaService {
	return &MediaService{
		Presigner: presigner,
		Bucket:    bucket,
		ProxyBase: strings.TrimRight(proxyBase, "/"),
		Expiry:    expiry,
		Log:       log.With().Str("service", "media").Logger(),
	}
}

func isExternalURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// FullURL returns a URL serving the photo as-is.
func (s *MediaService) FullURL(ctx context.Context, ref string) (string, error) {
	if isExternalURL(ref) {
		return fmt.Sprintf("%s/proxy?src=%s", s.ProxyBase, url.QueryEscape(ref)), nil
	}
	return s.presign(ctx, ref)
}

// BlurredURL returns a URL serving the blurred variant of the photo.
func (s *MediaService) BlurredURL(ctx context.Context, ref string) (string, error) {
	if isExternalURL(ref) {
		return fmt.Sprintf("%s/proxy?src=%s&blur=1", s.ProxyBase, url.QueryEscape(ref)), nil
	}
	return s.presign(ctx, "blurred/"+ref)
}

func (s *MediaService) presign(ctx context.Context, key string) (string, error) {
	signed, err := s.Presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(s.Expiry))
	if err != nil {
		return "", fmt.Errorf("failed to presign photo url for key '%s': %w", key, err)
	}
	return signed, nil
}

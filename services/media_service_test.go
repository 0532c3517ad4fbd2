package services

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPresigner struct {
	keys []string
}

func (p *recordingPresigner) PresignGetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.PresignOptions)) (string, error) {
	p.keys = append(p.keys, *params.Key)
	return "https://signed.example/" + *params.Key, nil
}

func newMediaFixture() (*MediaService, *recordingPresigner) {
	p := &recordingPresigner{}
	return NewMediaService(p, "veil-photos", "https://img.example/", 15*time.Minute, zerolog.Nop()), p
}

func TestExternalPhotoURLsGoThroughProxy(t *testing.T) {
	svc, _ := newMediaFixture()
	ctx := context.Background()

	full, err := svc.FullURL(ctx, "https://cdn.example/jonas 1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/proxy?src=https%3A%2F%2Fcdn.example%2Fjonas+1.jpg", full)

	blurred, err := svc.BlurredURL(ctx, "https://cdn.example/jonas 1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/proxy?src=https%3A%2F%2Fcdn.example%2Fjonas+1.jpg&blur=1", blurred)
}

func TestStoredPhotosArePresigned(t *testing.T) {
	svc, presigner := newMediaFixture()
	ctx := context.Background()

	full, err := svc.FullURL(ctx, "users/u_anna/1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/users/u_anna/1.jpg", full)

	blurred, err := svc.BlurredURL(ctx, "users/u_anna/1.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/blurred/users/u_anna/1.jpg", blurred,
		"the blur variant is its own object; the original key never leaks")

	assert.Equal(t, []string{"users/u_anna/1.jpg", "blurred/users/u_anna/1.jpg"}, presigner.keys)
}

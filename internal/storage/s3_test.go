package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mapease/checkin-service/internal/config"
)

func TestQRKey(t *testing.T) {
	assert.Equal(t, "qr/event-123/reg-1-1700000000000.png", QRKey("event-123", "reg-1", 1_700_000_000_000))
	assert.Equal(t, "qr/b/d-5.png", QRKey("a/b", "../../d", 5))
}

func TestPresignedURLIsSignedOffline(t *testing.T) {
	store, err := NewS3(context.Background(), config.S3Config{
		Region:               "eu-central-1",
		AccessKeyID:          "AKIDEXAMPLE",
		SecretAccessKey:      "secret",
		Bucket:               "qr-bucket",
		PresignExpireMinutes: 30,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "qr-bucket", store.Bucket())
	assert.Equal(t, 30*time.Minute, store.PresignExpire())

	raw, err := store.PresignedURL(context.Background(), QRKey("event-123", "reg-1", 1))
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Contains(t, u.Host+u.Path, "qr-bucket")
	assert.Contains(t, u.Path, "qr/event-123/reg-1-1.png")
	assert.Equal(t, "1800", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

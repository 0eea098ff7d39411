package storage

import (
	"context"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJournalKey(t *testing.T) {
	at := time.Date(2025, 3, 7, 23, 0, 0, 0, time.FixedZone("X", -2*3600))
	key := JournalKey(4, at)

	assert.Regexp(t, regexp.MustCompile(`^journals/4/2025/03/08/[0-9a-f-]{36}\.jsonl$`), key)
	assert.NotEqual(t, key, JournalKey(4, at))
}

func TestPresignJournalPut(t *testing.T) {
	p, err := NewS3Presigner(context.Background(), Options{
		AccessKey:    "admin",
		SecretKey:    "secretpassword",
		Bucket:       "journals",
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000/",
	})
	require.NoError(t, err)
	p.now = func() time.Time { return time.Date(2025, 3, 7, 12, 0, 0, 0, time.UTC) }

	key, raw, err := p.PresignJournalPut(context.Background(), 4)
	require.NoError(t, err)
	assert.Contains(t, key, "journals/4/2025/03/07/")

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Contains(t, u.Path, "/journals/"+key)
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
}

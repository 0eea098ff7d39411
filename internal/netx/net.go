// Package netx uploads payloads to object storage through presigned URLs.
package netx

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultContentType = "application/octet-stream"

// Uploader PUTs payloads to presigned object storage URLs.
type Uploader struct {
	client *http.Client
}

// NewUploader returns an Uploader over c. A nil c gets an instrumented
// default client.
func NewUploader(c *http.Client) *Uploader {
	if c == nil {
		c = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	return &Uploader{client: c}
}

// PutPresigned uploads data to url. Any status other than 200 is an error
// carrying the response body, which is how S3 reports signature problems.
func (u *Uploader) PutPresigned(ctx context.Context, url, contentType string, data []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = defaultContentType
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := u.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upload failed: %s; body: %s", resp.Status, string(b))
	}
	return nil
}

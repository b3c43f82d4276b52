package asset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"kawaiiShop/business/modelproxy"
	"net/http"
	"time"
)

type ModelConfig struct {
	Timeout  time.Duration
	MaxBytes int64
}

type ModelRepository struct {
	client   *http.Client
	maxBytes int64
}

var _ modelproxy.ModelFetcher = (*ModelRepository)(nil)

var ErrTooLarge = errors.New("model exceeds size limit")

func NewModelRepository(cfg ModelConfig) *ModelRepository {
	return &ModelRepository{
		client:   &http.Client{Timeout: cfg.Timeout},
		maxBytes: cfg.MaxBytes,
	}
}

func (r *ModelRepository) Fetch(ctx context.Context, rawURL string) (modelproxy.Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return modelproxy.Asset{}, err
	}
	req.Header.Set("Accept", "model/gltf-binary, model/gltf+json, application/octet-stream, */*")

	res, err := r.client.Do(req)
	if err != nil {
		return modelproxy.Asset{}, err
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		res.Body.Close()
		return modelproxy.Asset{}, fmt.Errorf("model host responded %d", res.StatusCode)
	}

	if r.maxBytes > 0 && res.ContentLength > r.maxBytes {
		res.Body.Close()
		return modelproxy.Asset{}, ErrTooLarge
	}

	contentType := res.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	return modelproxy.Asset{
		Body:          &cappedBody{rc: res.Body, remaining: r.maxBytes, capped: r.maxBytes > 0},
		ContentType:   contentType,
		ContentLength: res.ContentLength,
	}, nil
}

// cappedBody fails the stream once more than the limit has been read, for
// hosts that omit Content-Length.
type cappedBody struct {
	rc        io.ReadCloser
	remaining int64
	capped    bool
}

func (b *cappedBody) Read(p []byte) (int, error) {
	if !b.capped {
		return b.rc.Read(p)
	}
	if b.remaining <= 0 {
		// read one more byte to tell EOF from overflow
		var one [1]byte
		n, err := b.rc.Read(one[:])
		if n > 0 {
			return 0, ErrTooLarge
		}
		return 0, err
	}

	if int64(len(p)) > b.remaining {
		p = p[:b.remaining]
	}
	n, err := b.rc.Read(p)
	b.remaining -= int64(n)
	return n, err
}

func (b *cappedBody) Close() error {
	return b.rc.Close()
}

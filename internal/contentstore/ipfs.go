package contentstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"vouch/internal/platform/config"
	"vouch/pkg/platform/sentinel"
)

// IPFS stores blobs through the IPFS HTTP API using the block/put endpoint
// with the same codec and hash we use to compute addresses locally, then
// verifies the node agreed on the address before trusting the upload.
type IPFS struct {
	apiURL  string
	timeout time.Duration
	httpc   *http.Client
}

func NewIPFS(cfg config.ContentStore) *IPFS {
	return &IPFS{
		apiURL:  strings.TrimRight(cfg.APIURL, "/"),
		timeout: cfg.UploadTimeout,
		httpc:   &http.Client{},
	}
}

type blockPutResponse struct {
	Key  string `json:"Key"`
	Size int    `json:"Size"`
}

func (s *IPFS) Put(ctx context.Context, data []byte, name string) (Address, error) {
	want, err := AddressOf(data)
	if err != nil {
		return "", fmt.Errorf("compute content address: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("data", name)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}

	url := s.apiURL + "/api/v0/block/put?cid-codec=raw&mhtype=sha2-256&pin=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload block: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload block: %w: status %d: %s",
			sentinel.ErrUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var parsed blockPutResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode block/put response: %w", err)
	}

	got, err := Normalize(parsed.Key)
	if err != nil {
		return "", fmt.Errorf("node returned unparsable address: %w", err)
	}
	if got != want {
		return "", fmt.Errorf("node address %s does not match computed address %s", got, want)
	}
	return want, nil
}

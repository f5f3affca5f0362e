// Package photos stores employee photos on an image host and keeps decoded
// thumbnails for the admin console.
package photos

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"tasklist/internal/apperr"
)

const (
	// DefaultImgurURL is the Imgur API base
	DefaultImgurURL = "https://api.imgur.com"
	// MaxUploadSide bounds the longer side of an uploaded photo in pixels
	MaxUploadSide = 1024
)

// Uploader pushes local photos to Imgur
type Uploader struct {
	baseURL    string
	clientID   string
	httpClient *http.Client
}

// NewUploader creates an uploader. An empty baseURL means DefaultImgurURL.
func NewUploader(baseURL, clientID string) *Uploader {
	if baseURL == "" {
		baseURL = DefaultImgurURL
	}
	return &Uploader{
		baseURL:    strings.TrimRight(baseURL, "/"),
		clientID:   clientID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// IsURL reports whether ref is an http(s) URL rather than a local path
func IsURL(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Upload returns a hosted URL for ref. URLs are returned unchanged; local
// files are decoded, downscaled and posted to the image host.
func (u *Uploader) Upload(ctx context.Context, ref string) (string, error) {
	if IsURL(ref) {
		return ref, nil
	}
	if u.clientID == "" {
		return "", fmt.Errorf("%w: IMGUR_CLIENT_ID is not set", apperr.ErrExternalService)
	}

	img, err := imaging.Open(ref, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: open photo %s: %v", apperr.ErrValidation, ref, err)
	}
	img = imaging.Fit(img, MaxUploadSide, MaxUploadSide, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return "", fmt.Errorf("encode photo: %w", err)
	}

	form := url.Values{
		"image": {base64.StdEncoding.EncodeToString(buf.Bytes())},
		"type":  {"base64"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/3/image", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Client-ID "+u.clientID)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := u.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: imgur upload: %v", apperr.ErrExternalService, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: imgur upload: %s: %s", apperr.ErrExternalService, resp.Status, body)
	}

	var result struct {
		Data struct {
			Link string `json:"link"`
		} `json:"data"`
		Success bool `json:"success"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("%w: imgur response: %v", apperr.ErrExternalService, err)
	}
	if !result.Success || result.Data.Link == "" {
		return "", fmt.Errorf("%w: imgur returned no link", apperr.ErrExternalService)
	}

	slog.Info("Photo uploaded", "file", ref, "url", result.Data.Link)
	return result.Data.Link, nil
}

// decode reads an image from r and makes a thumbnail of at most side pixels
func decode(r io.Reader, side int) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, err
	}
	return imaging.Fill(img, side, side, imaging.Center, imaging.Lanczos), nil
}

package photos

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"tasklist/internal/apperr"
)

func writePNG(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	path := filepath.Join(t.TempDir(), "avatar.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return path
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{"https://i.imgur.com/abc.jpg", true},
		{"http://example.com/a.png", true},
		{"/home/admin/photo.png", false},
		{"photo.png", false},
		{"ftp://example.com/a.png", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			if got := IsURL(tt.ref); got != tt.want {
				t.Errorf("IsURL(%q) = %v, want %v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestUploadPassesURLThrough(t *testing.T) {
	u := NewUploader("", "")
	got, err := u.Upload(context.Background(), "https://i.imgur.com/abc.jpg")
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if got != "https://i.imgur.com/abc.jpg" {
		t.Errorf("Upload() = %q", got)
	}
}

func TestUploadLocalFile(t *testing.T) {
	path := writePNG(t, 40, 20)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/3/image" {
			t.Errorf("path = %s, want /3/image", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Client-ID test-id" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("image") == "" {
			t.Errorf("missing image field: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"link":"https://i.imgur.com/xyz.jpg"},"success":true,"status":200}`))
	}))
	defer server.Close()

	u := NewUploader(server.URL, "test-id")
	got, err := u.Upload(context.Background(), path)
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if got != "https://i.imgur.com/xyz.jpg" {
		t.Errorf("Upload() = %q", got)
	}
}

func TestUploadFailures(t *testing.T) {
	path := writePNG(t, 8, 8)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"success":false}`, http.StatusForbidden)
	}))
	defer server.Close()

	tests := []struct {
		name     string
		clientID string
		ref      string
		want     error
	}{
		{"host rejects", "test-id", path, apperr.ErrExternalService},
		{"no client id", "", path, apperr.ErrExternalService},
		{"missing file", "test-id", filepath.Join(t.TempDir(), "none.png"), apperr.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUploader(server.URL, tt.clientID).Upload(context.Background(), tt.ref)
			if !errors.Is(err, tt.want) {
				t.Errorf("Upload() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	var fetches atomic.Int32
	src := writePNG(t, 16, 16)
	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetches.Add(1)
		if strings.HasSuffix(r.URL.Path, "missing.png") {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	defer server.Close()

	ctx := context.Background()
	c := NewCache(2, 8)
	a, b, d := server.URL+"/a.png", server.URL+"/b.png", server.URL+"/d.png"

	img, err := c.Get(ctx, a)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got := img.Bounds().Dx(); got != 8 {
		t.Errorf("thumbnail width = %d, want 8", got)
	}

	steps := []string{b, a, d, a, b}
	for _, ref := range steps {
		if _, err := c.Get(ctx, ref); err != nil {
			t.Fatalf("Get(%s) error = %v", ref, err)
		}
	}
	// a, b, d fetched once each; b again after being evicted by d
	if got := fetches.Load(); got != 4 {
		t.Errorf("fetches = %d, want 4", got)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}

	if _, err := c.Get(ctx, server.URL+"/missing.png"); !errors.Is(err, apperr.ErrExternalService) {
		t.Errorf("Get(missing) error = %v, want ErrExternalService", err)
	}
	if _, err := c.Get(ctx, src); err != nil {
		t.Errorf("Get(local file) error = %v", err)
	}
}

package imaging

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestFetchDecode(t *testing.T) {
	data := encodePNG(t, 16, 9)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	img, err := FetchDecode(context.Background(), NewHTTPFetcher(), srv.URL+"/desk.png")
	if err != nil {
		t.Fatalf("fetch decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 9 {
		t.Fatalf("unexpected bounds: %v", b)
	}
}

func TestFetchNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	if _, err := NewHTTPFetcher().Fetch(context.Background(), srv.URL+"/missing.png"); err == nil {
		t.Fatalf("expected status error")
	}
}

func TestDecodeGarbage(t *testing.T) {
	if _, err := Decode([]byte("definitely not an image")); err == nil {
		t.Fatalf("expected decode error")
	}
}

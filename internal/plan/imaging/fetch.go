package imaging

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	// Поддерживаемые форматы библиотеки ассетов.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// ============================================================
// Bitmap fetch & decode
// ============================================================

// Fetcher достаёт байты картинки по URL. В тестах подменяется на
// фейк без сети.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: 15 * time.Second}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Decode превращает байты ассета в bitmap. Ошибка декодирования не
// фатальна для сцены — вызывающий просто пропускает картинку.
func Decode(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// FetchDecode — загрузка и декодирование одним шагом.
func FetchDecode(ctx context.Context, f Fetcher, url string) (image.Image, error) {
	data, err := f.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

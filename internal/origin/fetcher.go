// Package origin fetches remote assets from the single configured CDN origin.
// Requests are plain anonymous GETs of immutable versioned files; failures are
// surfaced as *FetchError and never retried.
package origin

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/black-hole/black-hole/internal/asset"
)

// Fetcher 绑定固定 Origin，将 RemoteAsset 转换为一次完整的回源请求。
type Fetcher struct {
	client *http.Client
	origin string
}

// NewFetcher 构造回源客户端；origin 形如 https://unpkg.com，末尾斜杠会被去除。
func NewFetcher(client *http.Client, origin string) *Fetcher {
	return &Fetcher{
		client: client,
		origin: strings.TrimSuffix(origin, "/"),
	}
}

// URL 拼接 <origin>/<package>@<version>/<file> 形式的回源地址。
func (f *Fetcher) URL(a asset.RemoteAsset) string {
	return fmt.Sprintf("%s/%s@%s/%s", f.origin, a.Package, a.Version, a.File)
}

// Fetch 回源拉取完整正文。非 2xx 状态码或网络层错误均返回 *FetchError，
// 其中携带尝试的 URL 与底层原因，由调用方转换为 bad-gateway 响应。
func (f *Fetcher) Fetch(ctx context.Context, a asset.RemoteAsset) ([]byte, error) {
	fetchURL := f.URL(a)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, http.NoBody)
	if err != nil {
		return nil, &FetchError{URL: fetchURL, Err: err}
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: fetchURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// 丢弃正文以便复用连接。
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4*1024))
		return nil, &FetchError{URL: fetchURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: fetchURL, StatusCode: resp.StatusCode, Err: err}
	}
	return body, nil
}

// FetchError 描述一次失败的回源尝试。StatusCode 为 0 时表示网络层错误。
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: upstream status %d", e.URL, e.StatusCode)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AsFetchError 提取错误链上的 *FetchError，便于调用方读取 URL/状态码。
func AsFetchError(err error) (*FetchError, bool) {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr, true
	}
	return nil, false
}

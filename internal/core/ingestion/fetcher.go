package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"syscall"
	"time"
)

const userAgent = "om2chat-ingest/1.0"

// Fetched はURLから取得した内容
type Fetched struct {
	Body        []byte
	ContentType string // レスポンスヘッダのContent-Type
	FinalURL    string // リダイレクト後のURL
}

// HTTPFetcher はソースURLから本文を取得する
type HTTPFetcher struct {
	client   *http.Client
	maxBytes int64
}

// FetcherOption はHTTPFetcherのオプション
type FetcherOption func(*fetcherOptions)

type fetcherOptions struct {
	allowPrivate bool
}

// WithPrivateNetworks はループバックやプライベートアドレスへの接続を許可する
func WithPrivateNetworks() FetcherOption {
	return func(o *fetcherOptions) {
		o.allowPrivate = true
	}
}

// errBlockedAddress は接続先が内部ネットワークの場合のエラー
var errBlockedAddress = errors.New("destination address is not allowed")

// cgnatPrefix は通信事業者グレードNATの共有アドレス空間
var cgnatPrefix = netip.MustParsePrefix("100.64.0.0/10")

// NewHTTPFetcher は新しいHTTPFetcherを作成する
// デフォルトでは名前解決後の接続先が内部アドレスであれば接続を拒否する
func NewHTTPFetcher(timeout time.Duration, maxBytes int64, opts ...FetcherOption) *HTTPFetcher {
	options := &fetcherOptions{}
	for _, opt := range opts {
		opt(options)
	}

	dialer := &net.Dialer{Timeout: timeout}
	if !options.allowPrivate {
		dialer.Control = guardAddress
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext

	return &HTTPFetcher{
		client:   &http.Client{Timeout: timeout, Transport: transport},
		maxBytes: maxBytes,
	}
}

// guardAddress は接続直前の解決済みアドレスを検査する。リダイレクト先にも適用される
func guardAddress(network, address string, _ syscall.RawConn) error {
	addrPort, err := netip.ParseAddrPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", errBlockedAddress, address)
	}
	if isInternalAddr(addrPort.Addr()) {
		return fmt.Errorf("%w: %s", errBlockedAddress, addrPort.Addr())
	}
	return nil
}

func isInternalAddr(addr netip.Addr) bool {
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsLinkLocalMulticast() ||
		addr.IsInterfaceLocalMulticast() ||
		addr.IsMulticast() ||
		addr.IsUnspecified() ||
		cgnatPrefix.Contains(addr)
}

// Fetch はURLをGETし、本文を最大 maxBytes まで読み込む
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*Fetched, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrFetchFailed, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html, text/markdown, text/plain;q=0.9, */*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetchFailed, resp.StatusCode)
	}

	reader := io.Reader(resp.Body)
	if f.maxBytes > 0 {
		reader = io.LimitReader(resp.Body, f.maxBytes+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrFetchFailed, err)
	}
	if f.maxBytes > 0 && int64(len(body)) > f.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, f.maxBytes)
	}

	return &Fetched{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		FinalURL:    resp.Request.URL.String(),
	}, nil
}

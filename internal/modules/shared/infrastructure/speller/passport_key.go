package speller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"sync"
)

// ErrPassportKeyNotFound 検索ページからpassportKeyを取得できなかった
var ErrPassportKeyNotFound = errors.New("passport key not found")

var passportKeyPattern = regexp.MustCompile(`passportKey=([^&"'}\s]+)`)

// PassportKeySource SpellerProxyのpassportKeyを保持する。
// 設定で固定キーが与えられた場合は取り直さない
type PassportKeySource struct {
	mu         sync.Mutex
	static     string
	page       string
	userAgent  string
	httpClient *http.Client
	key        string
}

// NewPassportKeySource 新しいPassportKeySourceを作成
func NewPassportKeySource(static, page, userAgent string, httpClient *http.Client) *PassportKeySource {
	return &PassportKeySource{
		static:     static,
		page:       page,
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

// SetHTTPClient テスト用にHTTPクライアントを設定
func (p *PassportKeySource) SetHTTPClient(client *http.Client) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.httpClient = client
}

// Refreshable 検索ページから取り直せるかどうか
func (p *PassportKeySource) Refreshable() bool {
	return p.static == "" && p.page != ""
}

// Key 現在のキーを返す。未取得なら検索ページから取得する
func (p *PassportKeySource) Key(ctx context.Context) (string, error) {
	if p.static != "" {
		return p.static, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.key != "" {
		return p.key, nil
	}
	return p.fetchLocked(ctx)
}

// Refresh staleが現在のキーと同じ場合のみ取り直す
func (p *PassportKeySource) Refresh(ctx context.Context, stale string) (string, error) {
	if !p.Refreshable() {
		return "", errors.New("passport key is not refreshable")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	// 他のリクエストが既に取り直している
	if p.key != "" && p.key != stale {
		return p.key, nil
	}
	p.key = ""
	return p.fetchLocked(ctx)
}

func (p *PassportKeySource) fetchLocked(ctx context.Context) (string, error) {
	if p.page == "" {
		return "", fmt.Errorf("%w: no passport key page configured", ErrPassportKeyNotFound)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.page, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create passport key request: %w", err)
	}
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("passport key request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("passport key page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read passport key page: %w", err)
	}

	match := passportKeyPattern.FindSubmatch(body)
	if match == nil {
		return "", ErrPassportKeyNotFound
	}

	key, err := url.QueryUnescape(string(match[1]))
	if err != nil {
		key = string(match[1])
	}

	p.key = key
	return key, nil
}

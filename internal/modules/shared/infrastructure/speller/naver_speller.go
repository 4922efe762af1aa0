package speller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"spellcheck-gateway/internal/config"
	"spellcheck-gateway/internal/modules/spellcheck/domain"
)

const maxResponseBytes = 1 << 20

var (
	// ErrTextTooLong プロバイダーの文字数上限を超えた
	ErrTextTooLong = errors.New("text exceeds provider length limit")

	// ErrProviderRejected プロバイダーがリクエストを拒否した（主にpassportKeyの失効）
	ErrProviderRejected = errors.New("speller API rejected request")
)

// NaverSpeller Naver 맞춤법 검사기のリポジトリ実装
type NaverSpeller struct {
	endpoint      string
	userAgent     string
	maxTextLength int
	timeout       time.Duration
	httpClient    *http.Client
	keys          *PassportKeySource
}

// NewNaverSpeller 新しいNaverSpellerを作成
func NewNaverSpeller(cfg *config.SpellerConfig) *NaverSpeller {
	httpClient := &http.Client{Timeout: cfg.Timeout}
	return &NaverSpeller{
		endpoint:      cfg.Endpoint,
		userAgent:     cfg.UserAgent,
		maxTextLength: cfg.MaxTextLength,
		timeout:       cfg.Timeout,
		httpClient:    httpClient,
		keys:          NewPassportKeySource(cfg.PassportKey, cfg.PassportKeyPage, cfg.UserAgent, httpClient),
	}
}

// SetHTTPClient テスト用にHTTPクライアントを設定（テストコードからのみ使用）
func (s *NaverSpeller) SetHTTPClient(client *http.Client) {
	s.httpClient = client
	s.keys.SetHTTPClient(client)
}

// ProviderName プロバイダー名を返す
func (s *NaverSpeller) ProviderName() string {
	return "Naver Speller"
}

// Check テキストを検査する。
// キー取得から再試行までを含めて speller.timeout 以内に終わらせる
func (s *NaverSpeller) Check(ctx context.Context, text string) (*domain.Checked, error) {
	if n := utf8.RuneCountInString(text); n > s.maxTextLength {
		return nil, fmt.Errorf("%w: %d characters (max %d)", ErrTextTooLong, n, s.maxTextLength)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	key, err := s.keys.Key(ctx)
	if err != nil {
		return nil, err
	}

	checked, err := s.request(ctx, text, key)
	if err == nil || !errors.Is(err, ErrProviderRejected) || !s.keys.Refreshable() {
		return checked, err
	}

	// キー失効の可能性があるため1回だけ取り直して再試行
	key, refreshErr := s.keys.Refresh(ctx, key)
	if refreshErr != nil {
		return nil, fmt.Errorf("%w (key refresh failed: %v)", err, refreshErr)
	}
	return s.request(ctx, text, key)
}

// spellerResponse SpellerProxyのレスポンス（必要な部分のみ）
type spellerResponse struct {
	Message struct {
		Error  string `json:"error"`
		Result *struct {
			ErrataCount int    `json:"errata_count"`
			HTML        string `json:"html"`
		} `json:"result"`
	} `json:"message"`
}

func (s *NaverSpeller) request(ctx context.Context, text, key string) (*domain.Checked, error) {
	endpoint, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid speller endpoint: %w", err)
	}

	query := endpoint.Query()
	query.Set("passportKey", key)
	query.Set("where", "nexearch")
	query.Set("color_blindness", "0")
	query.Set("q", text)
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Referer", "https://search.naver.com/")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speller API request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("speller API returned status %d: %s", resp.StatusCode, string(body))
	}

	var response spellerResponse
	if err := json.Unmarshal(stripJSONP(body), &response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if response.Message.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrProviderRejected, response.Message.Error)
	}
	if response.Message.Result == nil {
		return nil, errors.New("speller API returned no result")
	}

	checked, err := parseResultHTML(text, response.Message.Result.HTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse result html: %w", err)
	}
	return checked, nil
}

// stripJSONP callback(...) 形式のレスポンスからJSON部分を取り出す
func stripJSONP(body []byte) []byte {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") {
		return []byte(trimmed)
	}

	start := strings.Index(trimmed, "(")
	end := strings.LastIndex(trimmed, ")")
	if start < 0 || end <= start {
		return []byte(trimmed)
	}
	return []byte(trimmed[start+1 : end])
}

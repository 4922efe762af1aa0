package domain

import "context"

// Speller 外部スペルチェックプロバイダーのインターフェース
type Speller interface {
	// Check テキストを検査する
	Check(ctx context.Context, text string) (*Checked, error)

	// ProviderName プロバイダー名を返す
	ProviderName() string
}

package domain

// FieldName 検査対象のフィールド名
type FieldName string

const (
	FieldWorkContent FieldName = "workContent"
	FieldNote        FieldName = "note"
	FieldPlan        FieldName = "plan"
)

// FailurePrefix プロバイダー呼び出し失敗時のメッセージ接頭辞
const FailurePrefix = "맞춤법 검사 실패: "

// Fields 固定のフィールド名一覧
func Fields() []FieldName {
	return []FieldName{FieldWorkContent, FieldNote, FieldPlan}
}

// CheckRequest 検査リクエスト。未指定のフィールドは空文字列として扱う
type CheckRequest struct {
	WorkContent string `json:"workContent"`
	Note        string `json:"note"`
	Plan        string `json:"plan"`
}

// Text フィールド名に対応するテキストを返す
func (r CheckRequest) Text(field FieldName) string {
	switch field {
	case FieldWorkContent:
		return r.WorkContent
	case FieldNote:
		return r.Note
	case FieldPlan:
		return r.Plan
	default:
		return ""
	}
}

// ErrorEntry 指摘されたトークン
type ErrorEntry struct {
	Token       string   `json:"token"`
	Suggestions []string `json:"suggestions"`
	Type        string   `json:"type"`
}

// NewErrorEntry 新しいErrorEntryを作成。
// 候補はプロバイダーから取得できないため、トークン自身のみを入れる
func NewErrorEntry(token string, status CheckStatus) ErrorEntry {
	return ErrorEntry{
		Token:       token,
		Suggestions: []string{token},
		Type:        status.String(),
	}
}

// FieldResult フィールドごとの検査結果
type FieldResult struct {
	Original   string       `json:"original"`
	Corrected  string       `json:"corrected"`
	ErrorCount int          `json:"errors"`
	ErrorList  []ErrorEntry `json:"errorList"`
	Error      string       `json:"error,omitempty"`

	// Cached キャッシュから得た結果かどうか（レスポンスには含めない）
	Cached bool `json:"-"`
}

// NewSuccessResult プロバイダーの結果からFieldResultを作成
func NewSuccessResult(original string, checked *Checked) FieldResult {
	errorList := checked.ErrorEntries()
	return FieldResult{
		Original:   original,
		Corrected:  checked.Corrected,
		ErrorCount: len(errorList),
		ErrorList:  errorList,
	}
}

// NewFailureResult 失敗時のFieldResultを作成。補正結果は原文のまま
func NewFailureResult(original string, err error) FieldResult {
	return FieldResult{
		Original:   original,
		Corrected:  original,
		ErrorCount: 0,
		ErrorList:  []ErrorEntry{},
		Error:      FailurePrefix + err.Error(),
	}
}

// Failed 失敗した結果かどうか
func (r FieldResult) Failed() bool {
	return r.Error != ""
}

// CheckResponse フィールド名ごとの検査結果
type CheckResponse struct {
	WorkContent FieldResult `json:"workContent"`
	Note        FieldResult `json:"note"`
	Plan        FieldResult `json:"plan"`
}

// Set フィールド名に対応する結果を設定
func (r *CheckResponse) Set(field FieldName, result FieldResult) {
	switch field {
	case FieldWorkContent:
		r.WorkContent = result
	case FieldNote:
		r.Note = result
	case FieldPlan:
		r.Plan = result
	}
}

// Get フィールド名に対応する結果を返す
func (r *CheckResponse) Get(field FieldName) FieldResult {
	switch field {
	case FieldWorkContent:
		return r.WorkContent
	case FieldNote:
		return r.Note
	default:
		return r.Plan
	}
}

// AllCached すべてのフィールドがキャッシュから得られたかどうか
func (r *CheckResponse) AllCached() bool {
	return r.WorkContent.Cached && r.Note.Cached && r.Plan.Cached
}

package domain

// WordStatus トークンとその検査結果
type WordStatus struct {
	Word   string      `json:"word"`
	Status CheckStatus `json:"status"`
}

// Checked プロバイダーの検査結果
type Checked struct {
	Original  string       `json:"original"`
	Corrected string       `json:"corrected"`
	Words     []WordStatus `json:"words"`
}

// NewChecked 新しいCheckedを作成
func NewChecked(original, corrected string) *Checked {
	return &Checked{
		Original:  original,
		Corrected: corrected,
		Words:     []WordStatus{},
	}
}

// SetWord トークンの結果を登録する。
// 同じトークンが再登録された場合は最初の位置のままステータスだけ上書きする。
func (c *Checked) SetWord(word string, status CheckStatus) {
	for i := range c.Words {
		if c.Words[i].Word == word {
			c.Words[i].Status = status
			return
		}
	}
	c.Words = append(c.Words, WordStatus{Word: word, Status: status})
}

// ErrorEntries PASSED以外のトークンをプロバイダーの順序で返す
func (c *Checked) ErrorEntries() []ErrorEntry {
	entries := []ErrorEntry{}
	for _, w := range c.Words {
		if w.Status.IsPassed() {
			continue
		}
		entries = append(entries, NewErrorEntry(w.Word, w.Status))
	}
	return entries
}

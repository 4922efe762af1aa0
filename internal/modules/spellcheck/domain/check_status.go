package domain

import "fmt"

// CheckStatus プロバイダーがトークンごとに付与する検査結果の種別
type CheckStatus int

const (
	StatusPassed CheckStatus = iota
	StatusWrongSpelling
	StatusWrongSpacing
	StatusAmbiguous
	StatusStatisticalCorrection
)

var checkStatusNames = map[CheckStatus]string{
	StatusPassed:                "PASSED",
	StatusWrongSpelling:         "WRONG_SPELLING",
	StatusWrongSpacing:          "WRONG_SPACING",
	StatusAmbiguous:             "AMBIGUOUS",
	StatusStatisticalCorrection: "STATISTICAL_CORRECTION",
}

// String クライアントに返すシンボル名
func (s CheckStatus) String() string {
	if name, ok := checkStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("CheckStatus(%d)", int(s))
}

// IsPassed 問題なしのトークンかどうか
func (s CheckStatus) IsPassed() bool {
	return s == StatusPassed
}

// ParseCheckStatus シンボル名からCheckStatusを復元
func ParseCheckStatus(name string) (CheckStatus, error) {
	for status, n := range checkStatusNames {
		if n == name {
			return status, nil
		}
	}
	return StatusPassed, fmt.Errorf("unknown check status: %q", name)
}

func (s CheckStatus) MarshalText() ([]byte, error) {
	if _, ok := checkStatusNames[s]; !ok {
		return nil, fmt.Errorf("unknown check status: %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *CheckStatus) UnmarshalText(text []byte) error {
	status, err := ParseCheckStatus(string(text))
	if err != nil {
		return err
	}
	*s = status
	return nil
}

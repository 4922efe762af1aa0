package speller

import (
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"spellcheck-gateway/internal/modules/spellcheck/domain"
)

// 強調タグのクラスと検査結果の対応
var classStatuses = map[string]domain.CheckStatus{
	"red_text":    domain.StatusWrongSpelling,
	"green_text":  domain.StatusWrongSpacing,
	"violet_text": domain.StatusAmbiguous,
	"blue_text":   domain.StatusStatisticalCorrection,
}

type segment struct {
	text   string
	status domain.CheckStatus
}

// parseResultHTML 結果HTMLから補正後テキストとトークンごとの結果を取り出す
func parseResultHTML(original, html string) (*domain.Checked, error) {
	html = strings.NewReplacer("<br>", "\n", "<br/>", "\n", "<br />", "\n").Replace(html)

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<div id="speller-result">` + html + `</div>`))
	if err != nil {
		return nil, err
	}
	root := doc.Find("div#speller-result")

	var segments []segment
	root.Contents().Each(func(_ int, sel *goquery.Selection) {
		status := domain.StatusPassed
		if goquery.NodeName(sel) == "em" {
			status = statusForClass(sel.AttrOr("class", ""))
		}
		segments = append(segments, segment{text: sel.Text(), status: status})
	})

	checked := domain.NewChecked(original, root.Text())
	for _, word := range splitWords(segments) {
		checked.SetWord(word.text, word.status)
	}
	return checked, nil
}

func statusForClass(class string) domain.CheckStatus {
	for _, c := range strings.Fields(class) {
		if status, ok := classStatuses[c]; ok {
			return status
		}
	}
	return domain.StatusPassed
}

// splitWords 空白区切りの単語に分ける。
// 単語の結果は、その単語に掛かる最初の指摘タグの種別になる
func splitWords(segments []segment) []segment {
	var (
		words  []segment
		cur    strings.Builder
		status domain.CheckStatus
		inWord bool
	)

	flush := func() {
		if inWord {
			words = append(words, segment{text: cur.String(), status: status})
			cur.Reset()
			inWord = false
		}
	}

	for _, seg := range segments {
		for _, r := range seg.text {
			if unicode.IsSpace(r) {
				flush()
				continue
			}
			if !inWord {
				inWord = true
				status = domain.StatusPassed
			}
			if status.IsPassed() {
				status = seg.status
			}
			cur.WriteRune(r)
		}
	}
	flush()

	return words
}

// Package security はアプリケーションのセキュリティ機能を提供する。
//
// TextSanitizer は会社名・氏名・車両ラベルなど、利用者が入力した表示用テキストから
// HTMLマークアップを取り除く。bluemondayのStrictPolicyを使い、タグは一切通さない。
package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はプレーンテキスト用のサニタイザ。
// bluemondayのPolicyはスレッドセーフなため、1インスタンスを共有してよい。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerを生成する。
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// maxSanitizePasses は文字実体参照が多重にエスケープされた入力に対する反復の上限。
const maxSanitizePasses = 8

// SanitizeText は全てのタグを除去し、前後の空白を取り除いたプレーンテキストを返す。
//
// 入力はHTMLとして解釈するため、文字実体参照は元の文字に戻る（"AT&amp;T" は "AT&T"）。
// 戻した結果がタグになる場合（"&lt;b&gt;"）はそれも除去し、出力が変化しなくなるまで繰り返す。
// そのため出力にはマークアップが残らず、SanitizeTextを再適用しても値は変わらない。
func (s *TextSanitizer) SanitizeText(raw string) string {
	out := strings.TrimSpace(raw)
	for i := 0; i < maxSanitizePasses && out != ""; i++ {
		next := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(out)))
		if next == out {
			return out
		}
		out = next
	}
	// 上限まで変化し続けた場合はタグの区切り文字を落とす
	return strings.NewReplacer("<", "", ">", "").Replace(out)
}

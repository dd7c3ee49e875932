// Package excerpt 生成公告摘要
package excerpt

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// Ellipsis 截断后追加的省略标记
const Ellipsis = "…"

// Derive 生成不超过 maxLen 个字符（含省略号）且不截断单词的摘要。
// 未发生截断时原样返回，不追加省略号。
func Derive(body string, maxLen int) string {
	runes := []rune(body)
	if maxLen <= 0 || len(runes) <= maxLen {
		return body
	}

	budget := maxLen - len([]rune(Ellipsis))
	if budget <= 0 {
		return Ellipsis
	}

	// 截断点正好落在空白处时，前面的单词是完整的
	cut := budget
	if !unicode.IsSpace(runes[cut]) {
		for cut > 0 && !unicode.IsSpace(runes[cut-1]) {
			cut--
		}
	}

	head := strings.TrimRightFunc(string(runes[:cut]), unicode.IsSpace)
	return head + Ellipsis
}

// PlainText 去掉 HTML 标签并合并空白，用于从本地 HTML 正文生成摘要
func PlainText(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return strings.Join(strings.Fields(b.String()), " ")
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if skippedTags[tag] {
				switch {
				case tt == html.StartTagToken:
					skip++
				case tt == html.EndTagToken && skip > 0:
					skip--
				}
			}
			if blockTags[tag] {
				b.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

var skippedTags = map[string]bool{"script": true, "style": true}

var blockTags = map[string]bool{
	"p": true, "br": true, "div": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "td": true, "th": true, "blockquote": true, "pre": true, "hr": true,
}

// Package render 将公告列表渲染为可嵌入页面的 HTML 片段
package render

import (
	"bytes"
	"errors"
	"html/template"
	"sort"

	"noticeboard/internal/constants"
	"noticeboard/internal/model"
	"noticeboard/internal/nextcloud"
	"noticeboard/pkg/markdown"
)

const listTemplate = `<div class="announcements-list p-3">
{{- range .Items}}
{{- if .Local}}
<article class="announcement" id="announcement-local-{{.ID}}">
	<header class="entry-header">
		<h4 class="entry-title fs-6">
			<a class="link-dark text-decoration-none fw-bold" href="{{.Link}}">{{.Title}}</a>
		</h4>
	</header>
	<div class="entry-content">{{.Excerpt}}</div>
	{{- if .LinkText}}
	<footer class="entry-footer mt-2">
		<a href="{{.Link}}" class="read-more btn btn-sm btn-outline-dark fw-bold">{{.LinkText}}</a>
	</footer>
	{{- end}}
</article>
{{- else}}
<article class="announcement" id="announcement-remote-{{.ID}}">
	<header class="entry-header">
		<h4 class="entry-title fs-6 fw-bold">{{.Title}}</h4>
	</header>
	<div class="entry-content">{{.ExcerptHTML}}</div>
</article>
{{- end}}
{{- end}}
{{- range .Notices}}
<p class="{{.Class}}">{{.Text}}</p>
{{- end}}
{{- if .Empty}}
<small class="d-block text-center fw-light">{{.Empty}}</small>
{{- end}}
</div>`

var tmpl = template.Must(template.New("announcements").Parse(listTemplate))

type itemView struct {
	Local       bool
	ID          string
	Title       string
	Link        string
	LinkText    string
	Excerpt     string
	ExcerptHTML template.HTML
}

type noticeView struct {
	Class string
	Text  string
}

type listView struct {
	Items   []itemView
	Notices []noticeView
	Empty   string
}

// Renderer HTML 渲染器
type Renderer struct {
	markdown func(string) string
}

// NewRenderer 创建渲染器，md 为 nil 时使用默认 Markdown 渲染
func NewRenderer(md func(string) string) *Renderer {
	if md == nil {
		md = markdown.Render
	}
	return &Renderer{markdown: md}
}

// Render 渲染公告列表。有公告时只输出公告；没有公告时输出各来源失败原因，
// 都没有失败时输出空列表提示。
func (r *Renderer) Render(items []model.Announcement, failures map[model.SourceKind]error) string {
	view := listView{}
	for _, a := range items {
		view.Items = append(view.Items, r.item(a))
	}

	if len(view.Items) == 0 {
		kinds := make([]model.SourceKind, 0, len(failures))
		for k := range failures {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		for _, k := range kinds {
			view.Notices = append(view.Notices, noticeView{Class: "text-danger", Text: Explain(failures[k])})
		}
		if len(view.Notices) == 0 {
			view.Empty = constants.MsgNoAnnouncements
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		// 模板固定，执行失败只可能来自写入缓冲区
		return `<div class="announcements-list p-3"></div>`
	}
	return buf.String()
}

func (r *Renderer) item(a model.Announcement) itemView {
	switch a.Source {
	case model.SourceLocal:
		return itemView{
			Local:    true,
			ID:       a.ID,
			Title:    a.Title,
			Link:     a.Link,
			LinkText: a.LinkText,
			Excerpt:  a.Excerpt,
		}
	default:
		return itemView{
			ID:          a.ID,
			Title:       a.Title,
			ExcerptHTML: template.HTML(r.markdown(a.Excerpt)),
		}
	}
}

// Explain 将来源错误转换为展示文案
func Explain(err error) string {
	var (
		cfgErr   *nextcloud.ConfigurationError
		netErr   *nextcloud.NetworkError
		parseErr *nextcloud.ParseError
	)
	switch {
	case errors.As(err, &cfgErr):
		return constants.MsgRemoteNotConfigured
	case errors.As(err, &parseErr):
		return constants.MsgRemoteMalformed
	case errors.As(err, &netErr):
		return constants.MsgRemoteUnavailable
	default:
		return constants.MsgLocalUnavailable
	}
}

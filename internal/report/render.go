// Package report renders the daily digest to a standalone HTML document
// and writes it next to the day files in the output directory.
package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"

	"tube-digest/internal/domain/entity"
)

const reportTemplate = `<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="utf-8">
<title>YouTube 播客日报 · {{.Date}}</title>
<style>
  body { font-family: -apple-system, "Segoe UI", "PingFang SC", sans-serif; margin: 0 auto; max-width: 760px; padding: 24px; color: #1a1a1a; }
  h1 { font-size: 22px; border-bottom: 2px solid #e0e0e0; padding-bottom: 8px; }
  .item { margin: 20px 0; padding: 16px; border: 1px solid #e8e8e8; border-radius: 8px; }
  .item h2 { font-size: 17px; margin: 0 0 6px; }
  .item h2 a { color: #1155cc; text-decoration: none; }
  .meta { font-size: 13px; color: #777; margin-bottom: 8px; }
  .headline { font-weight: 600; margin: 8px 0; }
  ul.points { margin: 6px 0 0; padding-left: 20px; }
  ul.points li { margin: 3px 0; font-size: 14px; }
  .empty { color: #999; margin-top: 32px; }
</style>
</head>
<body>
<h1>YouTube 播客日报 · {{.Date}}（{{len .Items}} 条更新）</h1>
{{if .Items}}
{{range .Items}}
<div class="item">
  <h2><a href="{{.URL}}">{{.Title}}</a></h2>
  <div class="meta">{{.SourceTitle}}{{if .PublishedLocal}} · {{.PublishedLocal}}{{end}}</div>
  {{if .Headline}}<div class="headline">{{.Headline}}</div>{{end}}
  {{if .Points}}
  <ul class="points">
    {{range .Points}}<li>{{.}}</li>
    {{end}}
  </ul>
  {{end}}
</div>
{{end}}
{{else}}
<p class="empty">今日订阅频道没有新视频。</p>
{{end}}
</body>
</html>
`

var tpl = template.Must(template.New("daily_report").Parse(reportTemplate))

// Renderer turns a digest into an HTML report file on disk.
type Renderer struct {
	outDir string
}

// NewRenderer creates a Renderer writing into outDir.
func NewRenderer(outDir string) *Renderer {
	return &Renderer{outDir: outDir}
}

// Render produces the HTML document for one digest. It never fails on an
// empty digest; an empty day still renders a complete report.
func (r *Renderer) Render(digest *entity.Digest) (string, error) {
	var sb strings.Builder
	if err := tpl.Execute(&sb, digest); err != nil {
		return "", fmt.Errorf("execute report template: %w", err)
	}
	return sb.String(), nil
}

// Write renders the digest and writes it to
// <outDir>/daily_report_<date>.html, returning the file path.
func (r *Renderer) Write(digest *entity.Digest) (string, error) {
	html, err := r.Render(digest)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(r.outDir, fmt.Sprintf("daily_report_%s.html", digest.Date))
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("write report file: %w", err)
	}
	return path, nil
}

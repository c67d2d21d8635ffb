package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tube-digest/internal/domain/entity"
)

func sampleDigest() *entity.Digest {
	return &entity.Digest{
		Date: "2026-08-25",
		Items: []entity.DigestItem{
			{
				ItemID:         "v1",
				Title:          "市场回顾",
				URL:            "https://www.youtube.com/watch?v=v1",
				SourceTitle:    "Chan A",
				PublishedLocal: "2026-08-25 09:30",
				Headline:       "一句话摘要",
				Points:         []string{"要点一", "要点二"},
			},
		},
	}
}

func TestRender_IncludesItems(t *testing.T) {
	r := NewRenderer(t.TempDir())

	html, err := r.Render(sampleDigest())

	require.NoError(t, err)
	assert.Contains(t, html, "2026-08-25")
	assert.Contains(t, html, "市场回顾")
	assert.Contains(t, html, "https://www.youtube.com/watch?v=v1")
	assert.Contains(t, html, "一句话摘要")
	assert.Contains(t, html, "要点二")
	assert.Contains(t, html, "1 条更新")
}

func TestRender_EmptyDay(t *testing.T) {
	r := NewRenderer(t.TempDir())

	html, err := r.Render(&entity.Digest{Date: "2026-08-25"})

	require.NoError(t, err)
	assert.Contains(t, html, "没有新视频")
	assert.Contains(t, html, "0 条更新")
}

func TestRender_EscapesHTML(t *testing.T) {
	d := sampleDigest()
	d.Items[0].Title = `<script>alert("x")</script>`

	html, err := NewRenderer(t.TempDir()).Render(d)

	require.NoError(t, err)
	assert.NotContains(t, html, "<script>alert")
}

func TestWrite_CreatesReportFile(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(filepath.Join(dir, "outputs"))

	path, err := r.Write(sampleDigest())

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "outputs", "daily_report_2026-08-25.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "市场回顾")
}

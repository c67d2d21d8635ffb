package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_PlainJSON(t *testing.T) {
	raw := `{"headline": "一句话摘要", "points": ["要点一", "要点二", "要点三"]}`

	got := Normalize(raw, 8)

	assert.Equal(t, KindStructured, got.Kind)
	assert.Equal(t, "一句话摘要", got.Headline)
	assert.Equal(t, []string{"要点一", "要点二", "要点三"}, got.Points)
}

func TestNormalize_FencedJSON(t *testing.T) {
	raw := "```json\n{\"headline\": \"宏观周报\", \"points\": [\"美联储按兵不动\", \"美元走弱\"]}\n```"

	got := Normalize(raw, 8)

	assert.Equal(t, KindStructured, got.Kind)
	assert.Equal(t, "宏观周报", got.Headline)
	assert.Equal(t, []string{"美联储按兵不动", "美元走弱"}, got.Points)
}

func TestNormalize_FenceWithoutLanguageTag(t *testing.T) {
	raw := "```\n{\"headline\": \"测试\", \"points\": []}\n```"

	got := Normalize(raw, 8)

	assert.Equal(t, KindStructured, got.Kind)
	assert.Equal(t, "测试", got.Headline)
	assert.Empty(t, got.Points)
}

func TestNormalize_TrailingCommaRepaired(t *testing.T) {
	raw := `{"headline": "修复", "points": ["a", "b",],}`

	got := Normalize(raw, 8)

	assert.Equal(t, KindStructured, got.Kind)
	assert.Equal(t, "修复", got.Headline)
	assert.Equal(t, []string{"a", "b"}, got.Points)
}

func TestNormalize_JSONWithSurroundingProse(t *testing.T) {
	raw := "好的，以下是摘要：\n{\"headline\": \"收益电话会议\", \"points\": [\"营收超预期\"]}\n希望对你有帮助。"

	got := Normalize(raw, 8)

	assert.Equal(t, KindStructured, got.Kind)
	assert.Equal(t, "收益电话会议", got.Headline)
	assert.Equal(t, []string{"营收超预期"}, got.Points)
}

func TestNormalize_PointsAsSingleString(t *testing.T) {
	raw := `{"headline": "要点合并", "points": "第一点；第二点、第三点"}`

	got := Normalize(raw, 8)

	assert.Equal(t, KindStructured, got.Kind)
	assert.Equal(t, []string{"第一点", "第二点", "第三点"}, got.Points)
}

func TestNormalize_PointsStringNewlines(t *testing.T) {
	raw := `{"headline": "h", "points": "a\nb;c"}`

	got := Normalize(raw, 8)

	assert.Equal(t, []string{"a", "b", "c"}, got.Points)
}

func TestNormalize_FreeformLines(t *testing.T) {
	raw := "这是一段自由文本的第一行\n- 第一个要点\n• 第二个要点\n* 第三个要点"

	got := Normalize(raw, 8)

	assert.Equal(t, KindFreeform, got.Kind)
	assert.Equal(t, "这是一段自由文本的第一行", got.Headline)
	assert.Equal(t, []string{"第一个要点", "第二个要点", "第三个要点"}, got.Points)
	assert.Equal(t, raw, got.Body)
}

func TestNormalize_FreeformMaxPoints(t *testing.T) {
	raw := "标题\n一\n二\n三\n四"

	got := Normalize(raw, 2)

	assert.Equal(t, []string{"一", "二"}, got.Points)
}

func TestNormalize_HeadlineClamped(t *testing.T) {
	long := strings.Repeat("长", 100)
	raw := `{"headline": "` + long + `", "points": []}`

	got := Normalize(raw, 8)

	require.Equal(t, KindStructured, got.Kind)
	assert.Equal(t, 60, len([]rune(got.Headline)))
}

func TestNormalize_FallbackPointClamped(t *testing.T) {
	long := strings.Repeat("点", 120)
	raw := "标题\n" + long

	got := Normalize(raw, 8)

	require.Len(t, got.Points, 1)
	assert.Equal(t, 80, len([]rune(got.Points[0])))
}

func TestNormalize_EmptyInput(t *testing.T) {
	got := Normalize("   \n\t  ", 8)

	assert.Equal(t, KindFreeform, got.Kind)
	assert.Equal(t, "（解析失败）", got.Headline)
	assert.Empty(t, got.Points)
}

func TestNormalize_EmptyJSONFallsThrough(t *testing.T) {
	// A structurally valid but contentless payload falls through to the
	// line tier, which treats the braces line as a headline.
	raw := `{"headline": "", "points": []}`

	got := Normalize(raw, 8)

	assert.Equal(t, KindFreeform, got.Kind)
	assert.NotEmpty(t, got.Headline)
}

func TestNormalize_MaxPointsClampsStructured(t *testing.T) {
	raw := `{"headline": "h", "points": ["1", "2", "3", "4", "5"]}`

	got := Normalize(raw, 3)

	assert.Equal(t, []string{"1", "2", "3"}, got.Points)
}

func TestStripFence_SmallFenceKept(t *testing.T) {
	// The fence wraps only a fragment of the text, so nothing is stripped.
	s := "前面有很长的一段说明文字，足以让代码块占比低于九成。这里再加一些填充文字以确保比例足够低。" +
		"```json\n{}\n```"

	assert.Equal(t, s, stripFence(s))
}

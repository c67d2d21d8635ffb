package summarizer

import (
	"fmt"

	"tube-digest/internal/domain/entity"
	"tube-digest/internal/utils/text"
)

// promptDescriptionLimit caps how much of a video description is fed to the
// completion service.
const promptDescriptionLimit = 800

// systemPrompt instructs the completion service to answer with the
// structured JSON shape the normalizer expects. Models do not always comply,
// which is exactly what the normalizer's fallback tiers are for.
const systemPrompt = "你是面向投资研究的长视频/播客摘要助手。目标：在中文里以结构化要点输出，" +
	"尽可能完整覆盖关键信息（议题、核心观点、证据/数据、参与方/人名/公司、时间线与进展、结论/影响、风险/不确定性、行动项），" +
	"避免空话与水分；若无法直接读取视频内容，则基于可得信息稳健概括，严禁编造具体数据或不存在的结论。" +
	"输出必须是 JSON：{\"headline\": \"(可留空，<=60字)\", \"points\": [\"要点1(<=120字)\", ...，6-12条]}。" +
	"当信息较多时，优先保证要点完整性，headline 可留空。每条要点应包含主结论 + 关键依据/数字/引用/时间/主体。"

// userPrompt renders the per-video request message.
func userPrompt(rec entity.VideoRecord) string {
	return fmt.Sprintf(
		"视频标题：%s\n频道：%s\nURL：%s\n简介（可为空）：%s\n\n"+
			"任务：\n"+
			"1) 给出一句话摘要（<=40字，中文）。\n"+
			"2) 提炼3-8条要点（每条<=40字，中文）。\n"+
			"3) 仅返回 JSON，不要附加说明。",
		rec.Title, rec.SourceTitle, rec.URL,
		text.ClampRunes(rec.Description, promptDescriptionLimit))
}

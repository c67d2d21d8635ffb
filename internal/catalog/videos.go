package catalog

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"tube-digest/internal/domain/entity"
)

// EnrichVideos issues batched detail lookups for the given item IDs and
// merges the responses into one map keyed by ID. The input is split into
// consecutive chunks of at most chunkSize IDs (a chunk boundary never splits
// an ID); one request is issued per chunk.
//
// IDs absent from a chunk's response (deleted or private items) are simply
// omitted from the result. Callers treat "missing from enrichment" as "skip
// this item", not as an error.
func (c *Client) EnrichVideos(ctx context.Context, itemIDs []string, chunkSize int) (map[string]entity.VideoDetail, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	details := make(map[string]entity.VideoDetail, len(itemIDs))

	for start := 0; start < len(itemIDs); start += chunkSize {
		end := start + chunkSize
		if end > len(itemIDs) {
			end = len(itemIDs)
		}
		chunk := itemIDs[start:end]

		params := url.Values{}
		params.Set("part", "snippet,statistics,contentDetails")
		params.Set("id", strings.Join(chunk, ","))
		params.Set("maxResults", strconv.Itoa(len(chunk)))

		var resp videosListResponse
		if err := c.getJSON(ctx, "videos", params, &resp); err != nil {
			return nil, err
		}

		for _, item := range resp.Items {
			details[item.ID] = entity.VideoDetail{
				ItemID:       item.ID,
				SourceTitle:  item.Snippet.ChannelTitle,
				Description:  item.Snippet.Description,
				ViewCount:    item.Statistics.ViewCount,
				LikeCount:    item.Statistics.LikeCount,
				CommentCount: item.Statistics.CommentCount,
				Duration:     item.ContentDetails.Duration,
			}
		}
	}

	return details, nil
}

package catalog

import (
	"context"
	"net/url"
	"strconv"

	"tube-digest/internal/domain/entity"
)

// ResolveUploadsPlaylist maps a channel ID to its canonical uploads playlist.
// It returns ("", nil) when the channel has no discoverable uploads feed;
// callers skip such channels without aborting the run.
func (c *Client) ResolveUploadsPlaylist(ctx context.Context, channelID string) (string, error) {
	params := url.Values{}
	params.Set("part", "contentDetails")
	params.Set("id", channelID)
	params.Set("maxResults", "1")

	var resp channelsListResponse
	if err := c.getJSON(ctx, "channels", params, &resp); err != nil {
		return "", err
	}
	if len(resp.Items) == 0 {
		return "", nil
	}
	return resp.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
}

// WalkUploads paginates an uploads playlist newest-first, collecting item
// stubs for at most maxPages pages of up to 50 items each. Pagination stops
// at the first missing continuation token or when the page budget is
// exhausted, whichever comes first.
//
// The page budget is an intentional approximation of "since last run": items
// older than maxPages*50 positions are silently dropped. No dedup filtering
// happens here; that is the caller's responsibility.
func (c *Client) WalkUploads(ctx context.Context, playlistID string, maxPages int) ([]entity.FeedEntry, error) {
	var entries []entity.FeedEntry
	pageToken := ""
	fetched := 0

	for {
		params := url.Values{}
		params.Set("part", "snippet,contentDetails")
		params.Set("playlistId", playlistID)
		params.Set("maxResults", strconv.Itoa(PageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp playlistItemsListResponse
		if err := c.getJSON(ctx, "playlistItems", params, &resp); err != nil {
			return nil, err
		}

		for _, item := range resp.Items {
			// The item-level publish time is more precise than the playlist
			// snippet's; fall back to the snippet when it is absent.
			published := item.ContentDetails.VideoPublishedAt
			if published == "" {
				published = item.Snippet.PublishedAt
			}

			entries = append(entries, entity.FeedEntry{
				ItemID:      item.ContentDetails.VideoID,
				SourceID:    item.Snippet.ChannelID,
				SourceTitle: item.Snippet.ChannelTitle,
				Title:       item.Snippet.Title,
				Description: item.Snippet.Description,
				PublishedAt: published,
			})
		}

		pageToken = resp.NextPageToken
		fetched++
		if pageToken == "" || fetched >= maxPages {
			break
		}
	}

	return entries, nil
}

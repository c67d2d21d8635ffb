package catalog

import (
	"context"
	"log/slog"
	"net/url"
	"strconv"

	"tube-digest/internal/domain/entity"
)

// channelKind is the resource kind of channel-like subscription entries.
// Entries of any other kind are dropped silently.
const channelKind = "youtube#channel"

// ListSubscribedChannels pages through the "my followed sources" listing and
// returns the flat, ordered list of channel IDs. The enumeration is
// atomic-or-failed: any page failure after retries yields a CatalogError and
// no partial result, because a partial source list would silently
// under-collect.
func (c *Client) ListSubscribedChannels(ctx context.Context) ([]string, error) {
	var channelIDs []string
	pageToken := ""

	for {
		params := url.Values{}
		params.Set("part", "snippet")
		params.Set("mine", "true")
		params.Set("maxResults", strconv.Itoa(PageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp subscriptionsListResponse
		if err := c.getJSON(ctx, "subscriptions", params, &resp); err != nil {
			return nil, &entity.CatalogError{Op: "list subscriptions", Err: err}
		}

		for _, item := range resp.Items {
			if item.Snippet.ResourceID.Kind != channelKind {
				continue
			}
			channelIDs = append(channelIDs, item.Snippet.ResourceID.ChannelID)
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	slog.Info("subscriptions enumerated", slog.Int("channels", len(channelIDs)))
	return channelIDs, nil
}

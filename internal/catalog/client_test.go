package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tube-digest/internal/domain/entity"
	"tube-digest/internal/resilience/retry"
)

// newTestClient points a client at the given handler with an instant retry
// policy so transient-failure tests do not sleep.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	delays := &[]time.Duration{}
	retryCfg := retry.FixedBackoffConfig()
	retryCfg.Sleep = func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}

	cfg := Config{
		BaseURL: srv.URL,
		Token:   "test-token",
		Timeout: 5 * time.Second,
	}
	return NewClientWithRetry(cfg, retryCfg), delays
}

func TestListSubscribedChannels_Pagination(t *testing.T) {
	var gotAuth string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/subscriptions"))
		gotAuth = r.Header.Get("Authorization")

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("pageToken") {
		case "":
			fmt.Fprint(w, `{
				"items": [
					{"snippet": {"title": "Chan A", "resourceId": {"kind": "youtube#channel", "channelId": "UC_a"}}},
					{"snippet": {"title": "Playlist", "resourceId": {"kind": "youtube#playlist", "channelId": ""}}},
					{"snippet": {"title": "Chan B", "resourceId": {"kind": "youtube#channel", "channelId": "UC_b"}}}
				],
				"nextPageToken": "page2"
			}`)
		case "page2":
			fmt.Fprint(w, `{
				"items": [
					{"snippet": {"title": "Chan C", "resourceId": {"kind": "youtube#channel", "channelId": "UC_c"}}}
				]
			}`)
		default:
			t.Errorf("unexpected page token %q", r.URL.Query().Get("pageToken"))
		}
	})
	client, _ := newTestClient(t, handler)

	ids, err := client.ListSubscribedChannels(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"UC_a", "UC_b", "UC_c"}, ids)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestListSubscribedChannels_PageFailureAbortsEnumeration(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("pageToken") == "" {
			fmt.Fprint(w, `{
				"items": [{"snippet": {"resourceId": {"kind": "youtube#channel", "channelId": "UC_a"}}}],
				"nextPageToken": "page2"
			}`)
			return
		}
		http.Error(w, "forbidden", http.StatusForbidden)
	})
	client, _ := newTestClient(t, handler)

	ids, err := client.ListSubscribedChannels(context.Background())

	require.Error(t, err)
	assert.Nil(t, ids, "a failed enumeration must not return a partial list")

	var catErr *entity.CatalogError
	require.True(t, errors.As(err, &catErr))
	assert.Equal(t, "list subscriptions", catErr.Op)

	// 403 is permanent: the second page is requested exactly once.
	assert.Equal(t, 2, calls)
}

func TestResolveUploadsPlaylist(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "UC_a", r.URL.Query().Get("id"))
		fmt.Fprint(w, `{"items": [{"contentDetails": {"relatedPlaylists": {"uploads": "UU_a"}}}]}`)
	})
	client, _ := newTestClient(t, handler)

	playlistID, err := client.ResolveUploadsPlaylist(context.Background(), "UC_a")

	require.NoError(t, err)
	assert.Equal(t, "UU_a", playlistID)
}

func TestResolveUploadsPlaylist_UnknownChannel(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items": []}`)
	})
	client, _ := newTestClient(t, handler)

	playlistID, err := client.ResolveUploadsPlaylist(context.Background(), "UC_gone")

	require.NoError(t, err)
	assert.Empty(t, playlistID)
}

func TestWalkUploads_StopsAtMissingToken(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("pageToken") {
		case "":
			fmt.Fprint(w, `{
				"items": [{
					"snippet": {"publishedAt": "2026-08-25T00:00:00Z", "channelId": "UC_a", "channelTitle": "Chan A", "title": "v1", "description": "d1"},
					"contentDetails": {"videoId": "vid1", "videoPublishedAt": "2026-08-25T01:02:03Z"}
				}],
				"nextPageToken": "p2"
			}`)
		case "p2":
			// No item-level publish time: the snippet timestamp is used.
			fmt.Fprint(w, `{
				"items": [{
					"snippet": {"publishedAt": "2026-08-24T00:00:00Z", "channelId": "UC_a", "channelTitle": "Chan A", "title": "v2", "description": "d2"},
					"contentDetails": {"videoId": "vid2"}
				}]
			}`)
		}
	})
	client, _ := newTestClient(t, handler)

	entries, err := client.WalkUploads(context.Background(), "UU_a", 10)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "vid1", entries[0].ItemID)
	assert.Equal(t, "2026-08-25T01:02:03Z", entries[0].PublishedAt)
	assert.Equal(t, "vid2", entries[1].ItemID)
	assert.Equal(t, "2026-08-24T00:00:00Z", entries[1].PublishedAt)
}

func TestWalkUploads_PageBudget(t *testing.T) {
	pages := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		// A continuation token is always present; only the budget stops us.
		fmt.Fprintf(w, `{
			"items": [{
				"snippet": {"channelId": "UC_a", "channelTitle": "Chan A", "title": "v%d"},
				"contentDetails": {"videoId": "vid%d", "videoPublishedAt": "2026-08-25T00:00:00Z"}
			}],
			"nextPageToken": "next"
		}`, pages, pages)
	})
	client, _ := newTestClient(t, handler)

	entries, err := client.WalkUploads(context.Background(), "UU_a", 3)

	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.Equal(t, 3, pages)
}

func TestEnrichVideos_Chunking(t *testing.T) {
	var chunkSizes []int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids := strings.Split(r.URL.Query().Get("id"), ",")
		chunkSizes = append(chunkSizes, len(ids))

		var items []string
		for _, id := range ids {
			items = append(items, fmt.Sprintf(`{
				"id": %q,
				"snippet": {"channelTitle": "Chan", "description": "desc"},
				"statistics": {"viewCount": "10", "likeCount": "2", "commentCount": "1"},
				"contentDetails": {"duration": "PT10M"}
			}`, id))
		}
		fmt.Fprintf(w, `{"items": [%s]}`, strings.Join(items, ","))
	})
	client, _ := newTestClient(t, handler)

	ids := make([]string, 120)
	for i := range ids {
		ids[i] = fmt.Sprintf("vid%03d", i)
	}

	details, err := client.EnrichVideos(context.Background(), ids, 50)

	require.NoError(t, err)
	assert.Equal(t, []int{50, 50, 20}, chunkSizes)
	assert.Len(t, details, 120)
	assert.Equal(t, "PT10M", details["vid000"].Duration)
	assert.Equal(t, "10", details["vid119"].ViewCount)
}

func TestEnrichVideos_MissingIDsOmitted(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only one of the two requested items still exists.
		fmt.Fprint(w, `{"items": [{
			"id": "vid1",
			"snippet": {"channelTitle": "Chan", "description": ""},
			"statistics": {"viewCount": "5", "likeCount": "0", "commentCount": "0"},
			"contentDetails": {"duration": "PT1M"}
		}]}`)
	})
	client, _ := newTestClient(t, handler)

	details, err := client.EnrichVideos(context.Background(), []string{"vid1", "vid_deleted"}, 50)

	require.NoError(t, err)
	assert.Contains(t, details, "vid1")
	assert.NotContains(t, details, "vid_deleted")
}

func TestGetJSON_RetriesTransientStatus(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "upstream hiccup", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{"items": []}`)
	})
	client, delays := newTestClient(t, handler)

	_, err := client.ResolveUploadsPlaylist(context.Background(), "UC_a")

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, *delays)
}

func TestGetJSON_PermanentStatusFailsFast(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "no such playlist", http.StatusNotFound)
	})
	client, delays := newTestClient(t, handler)

	_, err := client.WalkUploads(context.Background(), "UU_gone", 5)

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *delays)

	var httpErr *retry.HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

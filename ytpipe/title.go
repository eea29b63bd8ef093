package ytpipe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/extractcore/extractcore/horosafe"
)

// ogTitleRe extracts the content of <meta property="og:title" content="...">
// the same way the original scrapes the watch page with BeautifulSoup.
var ogTitleRe = regexp.MustCompile(`<meta\s+property="og:title"\s+content="([^"]*)"`)

// fetchTitle resolves a video's title through three tiers, each wrapped
// in its own retry: the watch page's og:title meta tag (primary, matches
// the original's _fetch_video_title), then the oEmbed endpoint (a
// lighter-weight fallback the original doesn't have but which needs no
// HTML parsing), then "" with the caller left to proceed without a title
// rather than fail the whole extraction over a missing title.
func fetchTitle(ctx context.Context, client *http.Client, videoID string) string {
	if title, err := retryTitle(ctx, func() (string, error) { return fetchTitleFromWatchPage(ctx, client, videoID) }); err == nil {
		return title
	}
	if title, err := retryTitle(ctx, func() (string, error) { return fetchTitleFromOEmbed(ctx, client, videoID) }); err == nil {
		return title
	}
	return ""
}

func retryTitle(ctx context.Context, fn func() (string, error)) (string, error) {
	var title string
	err := retryTransient(ctx, 2, 300*time.Millisecond, func() error {
		t, err := fn()
		if err != nil {
			return err
		}
		title = t
		return nil
	})
	return title, err
}

func fetchTitleFromWatchPage(ctx context.Context, client *http.Client, videoID string) (string, error) {
	html, err := fetchWatchPage(ctx, client, videoID)
	if err != nil {
		return "", err
	}
	m := ogTitleRe.FindStringSubmatch(html)
	if m == nil {
		return "", fmt.Errorf("og:title meta tag not found")
	}
	return unescapeHTML(m[1]), nil
}

type oEmbedResponse struct {
	Title string `json:"title"`
}

func fetchTitleFromOEmbed(ctx context.Context, client *http.Client, videoID string) (string, error) {
	url := fmt.Sprintf("https://www.youtube.com/oembed?url=https://www.youtube.com/watch?v=%s&format=json", videoID)
	if err := horosafe.ValidateURL(url); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("oembed returned status %d", resp.StatusCode)
	}
	data, err := horosafe.LimitedReadAll(resp.Body, horosafe.MaxResponseBody)
	if err != nil {
		return "", err
	}
	var out oEmbedResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", err
	}
	return out.Title, nil
}

func fetchWatchPage(ctx context.Context, client *http.Client, videoID string) (string, error) {
	url := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
	if err := horosafe.ValidateURL(url); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("watch page returned status %d", resp.StatusCode)
	}
	data, err := horosafe.LimitedReadAll(resp.Body, horosafe.MaxResponseBody)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// entityReplacer unescapes the small fixed set of HTML entities that
// show up in YouTube's og:title meta tag content.
var entityReplacer = strings.NewReplacer(
	"&amp;", "&",
	"&quot;", "\"",
	"&#39;", "'",
	"&lt;", "<",
	"&gt;", ">",
)

func unescapeHTML(s string) string {
	return entityReplacer.Replace(s)
}

// Package news picks one good-news story from an RSS or Atom feed for the
// daily briefing. Stories are filtered by category: horoscopes and
// "this day in history" posts are never good news.
package news

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"

	"github.com/daybreak-home/daybreak/internal/httpkit"
)

// Feed represents a parsed RSS or Atom feed with its entries normalized
// into a common structure.
type Feed struct {
	Title   string
	Entries []Entry
}

// Entry represents a single item in a feed.
type Entry struct {
	Title      string
	Link       string
	Categories []string
}

// rssFeed is the XML structure for RSS 2.0 feeds.
type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title string    `xml:"title"`
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title      string   `xml:"title"`
	Link       string   `xml:"link"`
	Categories []string `xml:"category"`
}

// atomFeed is the XML structure for Atom feeds.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Title   string      `xml:"title"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title      string         `xml:"title"`
	Links      []atomLink     `xml:"link"`
	Categories []atomCategory `xml:"category"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

type atomCategory struct {
	Term string `xml:"term,attr"`
}

// parseFeed parses XML data as either an Atom or RSS feed, returning
// a normalized Feed. Atom is tried first.
func parseFeed(data []byte) (*Feed, error) {
	var atom atomFeed
	if err := xml.Unmarshal(data, &atom); err == nil && atom.XMLName.Local == "feed" {
		return atomToFeed(&atom), nil
	}

	var rss rssFeed
	if err := xml.Unmarshal(data, &rss); err == nil && rss.XMLName.Local == "rss" {
		return rssToFeed(&rss), nil
	}

	return nil, fmt.Errorf("unrecognized feed format (expected RSS 2.0 or Atom)")
}

// atomToFeed converts a parsed Atom feed to the normalized Feed type.
// When multiple <link> elements exist, the one with rel="alternate" is
// preferred.
func atomToFeed(af *atomFeed) *Feed {
	f := &Feed{Title: af.Title}
	for _, e := range af.Entries {
		var cats []string
		for _, c := range e.Categories {
			cats = append(cats, c.Term)
		}
		f.Entries = append(f.Entries, Entry{
			Title:      e.Title,
			Link:       atomBestLink(e.Links),
			Categories: cats,
		})
	}
	return f
}

// atomBestLink selects the most appropriate link from an Atom entry's
// link list. Prefers rel="alternate"; falls back to the first link.
func atomBestLink(links []atomLink) string {
	if len(links) == 0 {
		return ""
	}
	for _, l := range links {
		if l.Rel == "alternate" || l.Rel == "" {
			return l.Href
		}
	}
	return links[0].Href
}

// rssToFeed converts a parsed RSS 2.0 feed to the normalized Feed type.
func rssToFeed(rf *rssFeed) *Feed {
	f := &Feed{Title: rf.Channel.Title}
	for _, item := range rf.Channel.Items {
		f.Entries = append(f.Entries, Entry{
			Title:      item.Title,
			Link:       item.Link,
			Categories: item.Categories,
		})
	}
	return f
}

// fetchFeed retrieves and parses a feed from the given URL.
func fetchFeed(ctx context.Context, httpClient *http.Client, feedURL string) (*Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml, text/xml")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer httpkit.DrainAndClose(resp.Body, 1<<20) // 1 MB limit

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	return parseFeed(body)
}

package news

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/daybreak-home/daybreak/internal/httpkit"
)

// ErrNoEligibleStory is returned when every entry in the feed carries an
// excluded category.
var ErrNoEligibleStory = errors.New("news: no eligible story in feed")

// DefaultExcludedCategories are the categories that disqualify a story.
// Horoscopes are not good news, and retrospective posts confuse the
// summarization step.
var DefaultExcludedCategories = []string{
	"Horoscopes",
	"This Day In History",
	"On this day",
}

// Picker selects the first eligible story from a news feed.
type Picker struct {
	feedURL    string
	excluded   []string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewPicker creates a story picker for the given feed URL using
// DefaultExcludedCategories.
func NewPicker(feedURL string, logger *slog.Logger) *Picker {
	return &Picker{
		feedURL:    feedURL,
		excluded:   DefaultExcludedCategories,
		httpClient: httpkit.NewClient(httpkit.WithTimeout(15 * time.Second)),
		logger:     logger,
	}
}

// FirstEligible returns the link of the first feed entry whose categories
// do not intersect the exclusion list. Returns ErrNoEligibleStory when
// every entry is excluded or the feed is empty.
func (p *Picker) FirstEligible(ctx context.Context) (string, error) {
	feed, err := fetchFeed(ctx, p.httpClient, p.feedURL)
	if err != nil {
		return "", err
	}

	for _, entry := range feed.Entries {
		if p.isExcluded(entry.Categories) {
			p.logger.Info("skipping story", "link", entry.Link, "categories", entry.Categories)
			continue
		}
		p.logger.Info("good news", "link", entry.Link)
		return entry.Link, nil
	}

	return "", ErrNoEligibleStory
}

// Fragment returns the news block for the briefing. The story body is not
// fetched; summarizing the link is delegated to the completion step.
func (p *Picker) Fragment(ctx context.Context) (string, error) {
	link, err := p.FirstEligible(ctx)
	if err != nil {
		return "", err
	}
	return "Finally, here's a link to some good news that I'd like you to summarize: " + link, nil
}

func (p *Picker) isExcluded(categories []string) bool {
	for _, c := range categories {
		for _, ex := range p.excluded {
			if c == ex {
				return true
			}
		}
	}
	return false
}

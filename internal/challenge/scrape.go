package challenge

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/sakif/challenge-bot/internal/fetch"
	"github.com/sakif/challenge-bot/internal/model"
)

const (
	// minBlockLen is the shortest text block kept in a scraped description.
	minBlockLen = 10
	// minSectionLen is the shortest container text considered a day section.
	minSectionLen = 100
	// minConceptLen drops empty or decorative list items.
	minConceptLen = 3
)

var (
	descriptionTags = []atom.Atom{atom.P, atom.Div, atom.Span, atom.Ul, atom.Ol}
	sectionTags     = []atom.Atom{atom.Section, atom.Div, atom.Article}
)

// ScrapeStrategy extracts a day from the live challenge calendar page.
type ScrapeStrategy struct {
	fetcher fetch.Fetcher
	url     string
	timeout time.Duration
	logger  *slog.Logger
}

// NewScrapeStrategy scrapes pageURL with the given per-request timeout.
func NewScrapeStrategy(f fetch.Fetcher, pageURL string, timeout time.Duration, logger *slog.Logger) *ScrapeStrategy {
	return &ScrapeStrategy{fetcher: f, url: pageURL, timeout: timeout, logger: logger}
}

func (s *ScrapeStrategy) Name() Source { return SourceScrape }

func (s *ScrapeStrategy) Lookup(ctx context.Context, day int) (*model.ChallengeDay, bool) {
	doc, err := s.fetcher.FetchHTML(ctx, s.url, s.timeout)
	if err != nil {
		s.logger.Warn("challenge page unavailable",
			slog.Int("day", day),
			slog.String("error", err.Error()),
		)
		return nil, false
	}

	c, ok := Extract(doc, day)
	if !ok {
		s.logger.Warn("no challenge section found on page", slog.Int("day", day))
		return nil, false
	}

	s.logger.Info("scraped challenge from page",
		slog.Int("day", day),
		slog.String("title", c.Title),
		slog.Int("concepts", len(c.ConceptsTaught)),
	)
	return c, true
}

// Extract locates the section for day in a parsed challenge calendar.
//
// The first heading mentioning "Day N" is tried first; its following
// siblings up to the next heading form the description. When no heading
// matches, or the heading has no usable siblings (card layouts wrap each
// heading in its own element), the most specific section/div/article that
// mentions the day is used instead. A result needs a non-empty description;
// concepts are optional.
func Extract(doc *html.Node, day int) (*model.ChallengeDay, bool) {
	marker := dayMarker(day)

	var headingTitle string
	if h := firstMatchingHeading(doc, marker); h != nil {
		headingTitle = fetch.Text(h)
		blocks := blocksAfterHeading(h)
		if c, ok := buildChallenge(day, headingTitle, blocks, blocks); ok {
			return c, true
		}
	}

	sec := smallestMatchingSection(doc, marker)
	if sec == nil {
		return nil, false
	}
	title := headingTitle
	if hs := fetch.FindAll(sec, fetch.HeadingTags...); len(hs) > 0 {
		title = fetch.Text(hs[0])
	}
	return buildChallenge(day, title, fetch.FindAll(sec, atom.P, atom.Ul, atom.Ol), []*html.Node{sec})
}

// buildChallenge joins the long enough blocks into a description and
// harvests concepts from scope.
func buildChallenge(day int, title string, blocks, scope []*html.Node) (*model.ChallengeDay, bool) {
	var parts []string
	for _, b := range blocks {
		if text := fetch.Text(b); len(text) > minBlockLen {
			parts = append(parts, text)
		}
	}
	if len(parts) == 0 {
		return nil, false
	}

	if title == "" {
		title = fmt.Sprintf("Day %d Challenge", day)
	}

	return &model.ChallengeDay{
		Day:            day,
		Title:          title,
		Description:    strings.Join(parts, "\n\n"),
		ConceptsTaught: harvestConcepts(scope),
	}, true
}

// dayMarker matches "Day N" / "DAY N" as a whole word, so day 1 does not
// match "Day 12".
func dayMarker(day int) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?i)\bday\s+%d\b`, day))
}

func firstMatchingHeading(doc *html.Node, marker *regexp.Regexp) *html.Node {
	for _, h := range fetch.FindAll(doc, fetch.HeadingTags...) {
		if marker.MatchString(fetch.Text(h)) {
			return h
		}
	}
	return nil
}

func blocksAfterHeading(h *html.Node) []*html.Node {
	var blocks []*html.Node
	for s := fetch.NextElementSibling(h); s != nil && !fetch.IsElement(s, fetch.HeadingTags...); s = fetch.NextElementSibling(s) {
		if fetch.IsElement(s, descriptionTags...) {
			blocks = append(blocks, s)
		}
	}
	return blocks
}

// smallestMatchingSection picks the container with the shortest text that
// still mentions the day and is long enough to hold real content.
func smallestMatchingSection(doc *html.Node, marker *regexp.Regexp) *html.Node {
	var (
		best    *html.Node
		bestLen int
	)
	for _, sec := range fetch.FindAll(doc, sectionTags...) {
		text := fetch.Text(sec)
		if len(text) <= minSectionLen || !marker.MatchString(text) {
			continue
		}
		if best == nil || len(text) < bestLen {
			best, bestLen = sec, len(text)
		}
	}
	return best
}

// harvestConcepts finds a "concepts" label inside scope and collects the list
// items next to it: inside the label's ancestors, or in the list that
// immediately follows one of them.
func harvestConcepts(scope []*html.Node) []string {
	isLabel := func(s string) bool { return strings.Contains(strings.ToLower(s), "concepts") }

	for _, root := range scope {
		label := fetch.FindText(root, isLabel)
		if label == nil {
			continue
		}
		for el := label.Parent; el != nil; el = el.Parent {
			if items := listItems(el); len(items) > 0 {
				return items
			}
			if sib := fetch.NextElementSibling(el); fetch.IsElement(sib, atom.Ul, atom.Ol) {
				if items := listItems(sib); len(items) > 0 {
					return items
				}
			}
			if el == root {
				break
			}
		}
	}
	return nil
}

func listItems(n *html.Node) []string {
	var items []string
	for _, li := range fetch.FindAll(n, atom.Li) {
		if text := fetch.Text(li); len(text) > minConceptLen {
			items = append(items, text)
		}
	}
	return items
}

package challenge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func parse(t *testing.T, page string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func TestExtract_HeadingSection(t *testing.T) {
	doc := parse(t, calendarPage)

	c, ok := Extract(doc, 7)
	require.True(t, ok)

	assert.Equal(t, 7, c.Day)
	assert.Equal(t, "Day 7: Token Vault", c.Title)
	assert.Equal(t,
		"Build a vault that accepts deposits and tracks balances per address.\n\nKey concepts:\n\nMappings msg.sender",
		c.Description)
	assert.NotContains(t, c.Description, "following day")
	assert.Equal(t, []string{"Mappings", "msg.sender"}, c.ConceptsTaught)
}

func TestExtract_DayMarker(t *testing.T) {
	page := `
		<h3>DAY 10 - Auctions</h3><p>Sealed bid auction with reveal phase.</p>
		<h3>day 1 - Counter</h3><p>Increment and decrement a counter.</p>`

	tests := []struct {
		name  string
		day   int
		title string
	}{
		{"uppercase marker", 10, "DAY 10 - Auctions"},
		{"day 1 does not match day 10", 1, "day 1 - Counter"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := Extract(parse(t, page), tt.day)
			require.True(t, ok)
			assert.Equal(t, tt.title, c.Title)
		})
	}
}

func TestExtract_ShortBlocksSkipped(t *testing.T) {
	page := `<h2>Day 2</h2><p>tiny</p><span>Short one</span><div>A block long enough to keep.</div>`

	c, ok := Extract(parse(t, page), 2)
	require.True(t, ok)
	assert.Equal(t, "A block long enough to keep.", c.Description)
	assert.Nil(t, c.ConceptsTaught)
}

func TestExtract_HeadingWithoutContent(t *testing.T) {
	page := `<h2>Day 3</h2><p>soon</p><h2>Day 4</h2>`

	_, ok := Extract(parse(t, page), 3)
	assert.False(t, ok)
}

func TestExtract_SectionFallback(t *testing.T) {
	page := `
		<article>
			<div class="card">
				<strong>Day 5</strong>
				<p>Create an ownable contract where only the deployer can call admin functions.</p>
				<p>Concepts covered</p>
				<ol><li>Modifiers</li><li>Ownership</li><li>x</li></ol>
			</div>
		</article>`

	c, ok := Extract(parse(t, page), 5)
	require.True(t, ok)

	assert.Equal(t, "Day 5 Challenge", c.Title)
	assert.True(t, strings.HasPrefix(c.Description, "Create an ownable contract"))
	assert.Equal(t, []string{"Modifiers", "Ownership"}, c.ConceptsTaught)
}

func TestExtract_CardLayoutFallsBackToSection(t *testing.T) {
	page := `
		<section class="day-card">
			<div class="card-header"><h3>Day 7: Token Vault</h3></div>
			<div class="card-body">
				<p>Build a vault that accepts deposits and lets every address withdraw only its own balance.</p>
				<p>Key concepts</p>
				<ul><li>Mappings</li><li>msg.sender</li></ul>
			</div>
		</section>`

	c, ok := Extract(parse(t, page), 7)
	require.True(t, ok)

	assert.Equal(t, "Day 7: Token Vault", c.Title)
	assert.True(t, strings.HasPrefix(c.Description, "Build a vault that accepts deposits"))
	assert.Equal(t, []string{"Mappings", "msg.sender"}, c.ConceptsTaught)
}

func TestExtract_NoMatch(t *testing.T) {
	_, ok := Extract(parse(t, calendarPage), 30)
	assert.False(t, ok)
}

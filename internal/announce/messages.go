package announce

import (
	"fmt"
	"strings"

	"github.com/sakif/challenge-bot/internal/model"
	"github.com/sakif/challenge-bot/internal/transport"
)

// linkComingSoon is the dataset's stand-in for a video that is not out yet.
const linkComingSoon = "[Link coming soon]"

const reminderMessage = "⏰ *FINAL COUNTDOWN: 3 HOURS LEFT!* ⏰\n\n" +
	"🔥 Time is running out for today's challenge!\n\n" +
	"💻 Don't break your streak! Submit your solution using `/submit <GitHub_PR_link>`\n\n" +
	"💡 Tip: Even a simple solution is better than missing a day!"

// challengeMessage renders the daily reveal. Dataset and scraped fields are
// escaped and kept outside entities so a stray '_' or '*' cannot break the
// message for every destination.
func challengeMessage(day int, c model.ChallengeDay, calendarURL string) string {
	esc := transport.EscapeMarkdown
	var b strings.Builder

	fmt.Fprintf(&b, "💥 *DAY %d CHALLENGE IS LIVE!* 💥\n\n", day)
	if c.Week != "" {
		fmt.Fprintf(&b, "📅 %s\n\n", esc(c.Week))
	}
	fmt.Fprintf(&b, "📌 *Today's Challenge:* %s\n\n", esc(titleFor(day, c)))

	switch {
	case c.ExampleApplication != "":
		fmt.Fprintf(&b, "🔎 *Example Application:*\n%s\n\n", esc(c.ExampleApplication))
	case c.Description != "":
		fmt.Fprintf(&b, "📝 *Overview:*\n%s\n\n", esc(c.Description))
	}

	if len(c.ConceptsTaught) > 0 {
		b.WriteString("🔍 *Concepts You'll Master:*\n")
		for _, concept := range c.ConceptsTaught {
			fmt.Fprintf(&b, "• %s\n", esc(concept))
		}
		b.WriteString("\n")
	}
	if c.LogicalProgression != "" {
		fmt.Fprintf(&b, "📈 *Learning Progression:*\n%s\n\n", esc(c.LogicalProgression))
	}
	if calendarURL != "" {
		fmt.Fprintf(&b, "🔗 *Full Details:* [Challenge Calendar](%s)\n\n", calendarURL)
	}

	b.WriteString("👉 Submit your solution using `/submit <GitHub_PR_link>`\n\n")
	b.WriteString("💪 Let's crush this challenge together, builders!")
	return b.String()
}

func solutionMessage(day int, c model.ChallengeDay) string {
	return fmt.Sprintf("📣 *SOLUTION REVEAL: DAY %d* 📣\n\n"+
		"The official solution for today's challenge is now live!\n\n"+
		"📜 *Challenge:* %s\n\n"+
		"🧠 *Solution Link:* [View Solution](%s)\n"+
		"📺 *Video Walkthrough:* [Watch Here](%s)\n\n"+
		"🎯 Compare your approach with the official one and level up!",
		day, transport.EscapeMarkdown(titleFor(day, c)), c.SolutionLink, c.YouTubeLink)
}

func solutionPendingMessage(day int) string {
	return fmt.Sprintf("📣 *DAY %d SOLUTION UPDATE* 📣\n\n"+
		"The solution for today's challenge is not live yet.\n\n"+
		"🎬 Video and GitHub links dropping soon 👀 Stay tuned!\n"+
		"In the meantime, feel free to share your approach with the community!", day)
}

func resourcePromoMessage(vaultURL string) string {
	return "📚 *JUST LAUNCHED: THE WEB3 RESOURCE VAULT* 🧠💥\n\n" +
		"We've opened up a brand new GitHub repo full of 🔥 Web3 learning resources: tutorials, blogs, videos, and more!\n\n" +
		fmt.Sprintf("🌍 Dive in here: [Web3 Resource Vault](%s)\n\n", vaultURL) +
		"✨ If you find it helpful, don't forget to ⭐ star the repo and hit that 'Follow' button to stay in the loop.\n\n" +
		"🛠️ Got a cool link or hidden gem? PRs are open, come contribute and help the community grow 🚀"
}

func titleFor(day int, c model.ChallengeDay) string {
	if t := c.DisplayTitle(); t != "" {
		return t
	}
	return fmt.Sprintf("Day %d Challenge", day)
}

// hasSolution reports whether both links are present and not the defaults
// the dataset uses before a solution is published.
func hasSolution(c model.ChallengeDay, calendarURL string) bool {
	if c.YouTubeLink == "" || c.YouTubeLink == linkComingSoon {
		return false
	}
	if c.SolutionLink == "" || c.SolutionLink == calendarURL {
		return false
	}
	return true
}

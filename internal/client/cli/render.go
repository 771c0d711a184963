package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/mymind/internal/client/models"
	"github.com/dmitrijs2005/mymind/internal/client/views"
)

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

var (
	colorMuted  lipgloss.TerminalColor = ac("240", "243")
	colorAccent lipgloss.TerminalColor = ac("27", "62")
	colorAlert  lipgloss.TerminalColor = ac("160", "203")
	colorBorder lipgloss.TerminalColor = ac("250", "243")

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	idStyle     = lipgloss.NewStyle().Foreground(colorAccent)
	mutedStyle  = lipgloss.NewStyle().Foreground(colorMuted)
	alertStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorAlert)
	cardStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)
)

const shortIDLen = 8

// shortID is a display prefix of id; every command accepts it back.
func shortID(id string) string {
	prefix := ""
	if models.IsProvisional(id) {
		prefix = models.ProvisionalPrefix
		id = strings.TrimPrefix(id, prefix)
	}
	if len(id) > shortIDLen {
		id = id[:shortIDLen]
	}
	return prefix + id
}

func renderAlert(msg string) string {
	return alertStyle.Render("! " + msg)
}

func renderMeta(it models.Item) string {
	parts := []string{string(it.Platform), it.Space()}
	if len(it.Tags) > 0 {
		tags := make([]string, len(it.Tags))
		for i, t := range it.Tags {
			tags[i] = "#" + t
		}
		parts = append(parts, strings.Join(tags, " "))
	}
	return mutedStyle.Render(strings.Join(parts, " · "))
}

func renderItem(it models.Item) string {
	var b strings.Builder
	b.WriteString(idStyle.Render(shortID(it.ID)))
	b.WriteString("  ")
	b.WriteString(titleStyle.Render(it.Title))
	b.WriteString("\n    ")
	b.WriteString(it.URL)
	b.WriteString("\n    ")
	b.WriteString(renderMeta(it))
	return b.String()
}

func renderList(header string, items []models.Item, empty string) string {
	lines := []string{headerStyle.Render(fmt.Sprintf("%s (%d)", header, len(items)))}
	if len(items) == 0 {
		lines = append(lines, mutedStyle.Render(empty))
	}
	for _, it := range items {
		lines = append(lines, renderItem(it))
	}
	return strings.Join(lines, "\n")
}

func renderSpaces(spaces []views.Space) string {
	lines := []string{headerStyle.Render(fmt.Sprintf("Spaces (%d)", len(spaces)))}
	if len(spaces) == 0 {
		lines = append(lines, mutedStyle.Render("No spaces yet."))
	}
	for _, s := range spaces {
		line := titleStyle.Render(s.Name) + "  " + mutedStyle.Render(fmt.Sprintf("%d item(s)", len(s.Items)))
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func daysLeft(it models.Item, now time.Time) int {
	expires, ok := views.ExpiresAt(it)
	if !ok {
		return 0
	}
	left := expires.Sub(now)
	if left <= 0 {
		return 0
	}
	return int((left + 24*time.Hour - 1) / (24 * time.Hour))
}

func renderTrash(items []models.Item, now time.Time) string {
	lines := []string{headerStyle.Render(fmt.Sprintf("Trash (%d)", len(items)))}
	if len(items) == 0 {
		lines = append(lines, mutedStyle.Render("Trash is empty."))
	}
	for _, it := range items {
		lines = append(lines, renderItem(it)+"\n    "+
			alertStyle.Render(fmt.Sprintf("deleted, %d day(s) left", daysLeft(it, now))))
	}
	return strings.Join(lines, "\n")
}

func renderReviewCard(it models.Item, remaining int) string {
	body := strings.Join([]string{
		titleStyle.Render(it.Title),
		it.URL,
		renderMeta(it),
		mutedStyle.Render(fmt.Sprintf("%d left to review · keep / skip", remaining)),
	}, "\n")
	return cardStyle.Render(body)
}

package session

import (
	"fmt"
	"regexp"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/wordcraft/internal/study"
	"github.com/abhisek/wordcraft/internal/ui/components"
	"github.com/abhisek/wordcraft/internal/ui/layout"
	"github.com/abhisek/wordcraft/internal/ui/theme"
)

func (s *SessionScreen) View(width, height int) string {
	if s.confirming {
		return renderQuitConfirm(width)
	}
	switch s.phase {
	case phaseLoading:
		return layout.Centered("\n\n\n  Loading words...", width, lipgloss.NewStyle().Foreground(theme.TextDim))
	case phaseLoadFailed:
		return layout.Centered(
			fmt.Sprintf("\n\n\n  Could not start the session.\n\n  %s\n\n  Press R to retry.", s.errMsg),
			width, lipgloss.NewStyle().Foreground(theme.Error))
	case phaseEmpty:
		return layout.Centered(
			fmt.Sprintf("\n\n\n  No words to study in %q mode.\n\n  Try another mode.", s.mode),
			width, lipgloss.NewStyle().Foreground(theme.TextDim).Italic(true))
	}
	return s.renderCard(width)
}

// renderCard renders the progress line, the prompt card and the answer area.
func (s *SessionScreen) renderCard(width int) string {
	item, ok := s.engine.Current()
	if !ok {
		return ""
	}

	var b strings.Builder

	// Progress shows the word being studied, not the words done.
	p := s.engine.Progress()
	barWidth := min(width-8, 60)
	bar := components.NewProgressBar("", min(p.Current+1, p.Total), p.Total, barWidth)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.renderPrompt(item, width)))
	b.WriteString("\n\n")

	switch s.phase {
	case phaseFeedback:
		b.WriteString(s.renderFeedback(item, width))
	default:
		answer := "Answer: " + s.input.View()
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, answer))
		if s.phase == phaseSubmitting {
			b.WriteString("\n\n")
			b.WriteString(layout.Centered("Checking...", width, lipgloss.NewStyle().Foreground(theme.TextDim)))
		}
		if s.submitErr != "" {
			b.WriteString("\n\n")
			b.WriteString(layout.Centered("Could not submit: "+s.submitErr+"\nPress Enter to try again.",
				width, lipgloss.NewStyle().Foreground(theme.Error)))
		}
	}

	return b.String()
}

func (s *SessionScreen) renderPrompt(item study.Item, width int) string {
	var lines []string

	if item.IsRecheck {
		lines = append(lines, theme.Badge.Render("recheck"), "")
	}

	lines = append(lines, theme.Prompt.Render(item.Translation))

	var meta []string
	if item.Phonetic != "" {
		meta = append(meta, item.Phonetic)
	}
	if item.PartOfSpeech != "" {
		meta = append(meta, item.PartOfSpeech)
	}
	if len(meta) > 0 {
		lines = append(lines, theme.Phonetic.Render(strings.Join(meta, "  ")))
	}

	if len(item.Sentences) > 0 {
		sentence := item.Sentences[0]
		if s.phase != phaseFeedback {
			sentence = maskWord(sentence, item.Word)
		}
		lines = append(lines, "", theme.Hint.Width(min(width-16, 60)).Render(sentence))
	}

	return theme.Card.Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}

func (s *SessionScreen) renderFeedback(item study.Item, width int) string {
	r := s.result
	if r == nil || r.Verdict == nil {
		return ""
	}
	v := r.Verdict

	answer := item.Word
	if v.CorrectAnswer != "" {
		answer = v.CorrectAnswer
	}

	var b strings.Builder
	switch {
	case r.Skip:
		b.WriteString(layout.Centered("Skipped", width, lipgloss.NewStyle().Foreground(theme.TextDim).Bold(true)))
		b.WriteString("\n")
		b.WriteString(layout.Centered(theme.Reveal.Render(answer), width, lipgloss.NewStyle()))
	case v.Correct:
		b.WriteString(layout.Centered("Correct!", width, theme.Correct))
		b.WriteString("\n")
		b.WriteString(layout.Centered(theme.Reveal.Render(answer), width, lipgloss.NewStyle()))
	default:
		b.WriteString(layout.Centered("Not quite", width, theme.Incorrect))
		b.WriteString("\n")
		b.WriteString(layout.Centered(fmt.Sprintf("You typed %q, the word is %s", r.Input, theme.Reveal.Render(answer)),
			width, lipgloss.NewStyle().Foreground(theme.TextDim)))
	}

	if status := statusLine(v); status != "" {
		b.WriteString("\n\n")
		b.WriteString(layout.Centered(status, width, lipgloss.NewStyle().Foreground(theme.Secondary)))
	}

	b.WriteString("\n\n")
	b.WriteString(layout.Centered("Press Enter for the next word", width, theme.Hint))
	return b.String()
}

func statusLine(v *study.Verdict) string {
	switch v.StatusUpdate {
	case "upgraded":
		if v.CurrentStatus == study.StatusPendingCheck {
			return "Nice! This word comes back in a moment for a double check."
		}
		return "Moved up to " + v.CurrentStatus.String()
	case "reset":
		return "Back to new"
	}
	return ""
}

// maskWord hides case-insensitive occurrences of word in sentence.
func maskWord(sentence, word string) string {
	if strings.TrimSpace(word) == "" {
		return sentence
	}
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(word))
	return re.ReplaceAllStringFunc(sentence, func(m string) string {
		return strings.Repeat("_", len([]rune(m)))
	})
}

func renderQuitConfirm(width int) string {
	var b strings.Builder
	b.WriteString("\n\n\n")
	b.WriteString(layout.Centered("End session early?", width, lipgloss.NewStyle().Foreground(theme.Text).Bold(true)))
	b.WriteString("\n")
	b.WriteString(layout.Centered("Answers already submitted are saved.", width, lipgloss.NewStyle().Foreground(theme.TextDim)))
	b.WriteString("\n\n")
	b.WriteString(layout.Centered("[Y] Yes, end session", width, lipgloss.NewStyle().Foreground(theme.Success)))
	b.WriteString("\n")
	b.WriteString(layout.Centered("[N] No, keep going", width, lipgloss.NewStyle().Foreground(theme.Primary)))
	return b.String()
}

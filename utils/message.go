package utils

import (
	"strings"
	"unicode/utf8"
)

const (
	// MessageLimit is the chat gateway's maximum message length.
	MessageLimit = 2000
	// ChunkBudget is the most a single report message may hold.
	ChunkBudget = 1994
	// CodeBlockBudget is what is left of ChunkBudget for text inside a code fence.
	CodeBlockBudget = ChunkBudget - 2*len(fence)
)

const fence = "```"

// ChunkLines joins lines with newlines into blocks of at most budget
// characters. Lines are never split unless a single line exceeds the budget.
// Joining the returned chunks with "\n" reproduces strings.Join(lines, "\n")
// whenever every line fits the budget.
func ChunkLines(lines []string, budget int) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, line := range lines {
		lineLen := utf8.RuneCountInString(line)
		if lineLen > budget {
			flush()
			chunks = append(chunks, splitRunes(line, budget)...)
			continue
		}
		needed := lineLen
		if currentLen > 0 {
			needed++
		}
		if currentLen+needed > budget {
			flush()
			needed = lineLen
		}
		if currentLen > 0 {
			current.WriteByte('\n')
		}
		current.WriteString(line)
		currentLen += needed
	}
	flush()
	return chunks
}

func splitRunes(s string, size int) []string {
	var parts []string
	runes := []rune(s)
	for len(runes) > size {
		parts = append(parts, string(runes[:size]))
		runes = runes[size:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}

// SplitMessage splits arbitrary text into messages under the gateway limit,
// preferring line boundaries.
func SplitMessage(text string) []string {
	if utf8.RuneCountInString(text) <= MessageLimit {
		return []string{text}
	}
	return ChunkLines(strings.Split(text, "\n"), MessageLimit)
}

// Truncate shortens s to at most max runes.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// CodeBlock wraps text in a code fence.
func CodeBlock(text string) string {
	return fence + text + fence
}

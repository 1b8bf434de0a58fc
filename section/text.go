package section

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// punctuation is the ASCII punctuation set used to split titles and to strip
// tokens before counting words.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

func isPunct(r rune) bool {
	return r < utf8.RuneSelf && strings.ContainsRune(punctuation, r)
}

// CleanDiv splits a section narrative into its title and cleaned body.
//
// The outer wrapper tag is dropped (the text between the first '>' and the
// last '<'). The title ends at the first punctuation character after position
// 0, skipping the character that opens the text. In the body, whitespace runs
// collapse to one space and escaped-newline and slash artifacts become spaces.
// Narrative without such punctuation has an empty body.
func CleanDiv(div string) (title, body string) {
	div = strings.TrimSpace(div)

	start := strings.IndexByte(div, '>') + 1
	end := strings.LastIndexByte(div, '<')
	if end < start {
		end = len(div)
	}
	inner := div[start:end]

	split := firstPunct(inner)
	title = inner[:split]
	if split < len(inner) {
		body = inner[split+1:]
	}

	body = collapseSpace(body)
	body = stripArtifacts(body)
	return title, body
}

// CountText returns the word and character counts of a narrative's body.
// Words are whitespace-separated tokens after removing punctuation; characters
// are runes of the cleaned body.
func CountText(div string) (words, chars int) {
	_, body := CleanDiv(div)
	chars = utf8.RuneCountInString(body)
	words = len(strings.Fields(strings.Map(func(r rune) rune {
		if isPunct(r) {
			return -1
		}
		return r
	}, body)))
	return words, chars
}

// firstPunct returns the byte offset of the earliest punctuation character
// whose first occurrence in s is past position 0, or len(s). A character that
// opens s is ignored everywhere, so "-Title-x: y" splits at ':'.
func firstPunct(s string) int {
	var lead rune = -1
	if r, _ := utf8.DecodeRuneInString(s); isPunct(r) {
		lead = r
	}
	for i, r := range s {
		if i > 0 && r != lead && isPunct(r) {
			return i
		}
	}
	return len(s)
}

func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inSpace := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte(' ')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// stripArtifacts replaces literal "\n" sequences, '/' and '\' with a space.
func stripArtifacts(s string) string {
	if !strings.ContainsAny(s, `/\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\\' && i+1 < len(s) && s[i+1] == 'n':
			b.WriteByte(' ')
			i++
		case s[i] == '\\' || s[i] == '/':
			b.WriteByte(' ')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

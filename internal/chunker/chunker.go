// Package chunker splits document text into overlapping fragments sized for
// the embedding model's effective context.
package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// separators in descending semantic size. The empty string means a hard
// character cut and must stay last.
var separators = []string{"\n\n", "\n", ". ", " ", ""}

// Defaults match the embedding model's effective context.
const (
	DefaultChunkSize    = 512
	DefaultChunkOverlap = 100
)

// Chunker is a pure splitter: no side effects, output depends only on the
// input text and the configured size/overlap.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker. overlap must be smaller than size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, errors.New("chunk size must be positive")
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("chunk overlap must be in [0, %d), got %d", size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split produces an ordered sequence of chunks, each at most size runes,
// with consecutive chunks overlapping by up to the configured overlap.
// Splitting prefers paragraph boundaries, then lines, sentences and words,
// falling back to a hard cut. Whitespace-only chunks are dropped so they
// never waste an embedding call.
func (c *Chunker) Split(text string) []string {
	parts := c.split(text, separators)

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (c *Chunker) split(text string, seps []string) []string {
	if text == "" {
		return nil
	}
	if utf8.RuneCountInString(text) <= c.size {
		return []string{text}
	}

	sep, rest := pickSeparator(text, seps)
	if sep == "" {
		return c.hardSplit(text)
	}
	return c.merge(splitKeep(text, sep), rest)
}

// pickSeparator selects the largest boundary present in text and returns the
// remaining smaller boundaries for recursion.
func pickSeparator(text string, seps []string) (string, []string) {
	for i, s := range seps {
		if s == "" {
			return "", nil
		}
		if strings.Contains(text, s) {
			return s, seps[i+1:]
		}
	}
	return "", nil
}

// splitKeep splits after every occurrence of sep, keeping the separator
// attached so joining chunks loses no characters.
func splitKeep(text, sep string) []string {
	parts := strings.SplitAfter(text, sep)
	if n := len(parts); n > 0 && parts[n-1] == "" {
		parts = parts[:n-1]
	}
	return parts
}

// merge greedily packs pieces into chunks of at most size runes, seeding each
// new chunk with the tail of the previous one for context continuity. Pieces
// still larger than size recurse with the smaller separators.
func (c *Chunker) merge(pieces []string, seps []string) []string {
	var chunks []string
	cur := ""

	for _, piece := range pieces {
		plen := utf8.RuneCountInString(piece)

		if plen > c.size {
			if cur != "" {
				chunks = append(chunks, cur)
				cur = ""
			}
			chunks = append(chunks, c.split(piece, seps)...)
			continue
		}

		if cur == "" {
			cur = piece
			continue
		}
		if utf8.RuneCountInString(cur)+plen <= c.size {
			cur += piece
			continue
		}

		chunks = append(chunks, cur)
		cur = c.overlapTail(cur, c.size-plen) + piece
	}

	if cur != "" {
		chunks = append(chunks, cur)
	}
	return chunks
}

// overlapTail returns up to overlap trailing runes of s, capped at maxLen so
// the next chunk never exceeds the size limit.
func (c *Chunker) overlapTail(s string, maxLen int) string {
	n := c.overlap
	if n > maxLen {
		n = maxLen
	}
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}

// hardSplit cuts text into fixed windows of size runes advancing by
// size-overlap, the last resort when no boundary exists.
func (c *Chunker) hardSplit(text string) []string {
	r := []rune(text)
	stride := c.size - c.overlap

	var chunks []string
	for start := 0; ; start += stride {
		end := start + c.size
		if end >= len(r) {
			chunks = append(chunks, string(r[start:]))
			break
		}
		chunks = append(chunks, string(r[start:end]))
	}
	return chunks
}

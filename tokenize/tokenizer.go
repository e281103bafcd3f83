package tokenize

import (
	"strings"
	"unicode"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

func InitTokenizer() (*tokenizer.Tokenizer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return t, nil
}

func containsJapanese(text string) bool {
	for _, r := range text {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return true
		}
	}
	return false
}

// QueryWords returns the whitespace-separated words of query, normalized, in query order.
// Words are never segmented further, so a repeated word counts once per occurrence.
func QueryWords(query string) []string {
	return Words(query)
}

// Highlighter wraps the parts of a field that match query words.
// Japanese runs carry no spaces, so they are cut into morphemes with kagome and only
// the morphemes covering a match are wrapped instead of the whole run.
type Highlighter struct {
	tok     *tokenizer.Tokenizer
	preTag  string
	postTag string
}

// NewHighlighter accepts a nil tokenizer; whole whitespace fields are wrapped then.
func NewHighlighter(tok *tokenizer.Tokenizer, preTag, postTag string) *Highlighter {
	return &Highlighter{tok: tok, preTag: preTag, postTag: postTag}
}

// Mark returns text with matching spans wrapped, and false when no word matched.
// Whitespace in the result is collapsed to single spaces.
func (h *Highlighter) Mark(text string, words []string) (string, bool) {
	if h == nil || len(words) == 0 {
		return "", false
	}

	fields := strings.Fields(text)
	out := make([]string, 0, len(fields))
	found := false
	for _, field := range fields {
		segs := h.segments(field)
		marked := markSegments(segs, words)

		var b strings.Builder
		for i := 0; i < len(segs); {
			if !marked[i] {
				b.WriteString(segs[i])
				i++
				continue
			}
			found = true
			b.WriteString(h.preTag)
			for ; i < len(segs) && marked[i]; i++ {
				b.WriteString(segs[i])
			}
			b.WriteString(h.postTag)
		}
		out = append(out, b.String())
	}
	if !found {
		return "", false
	}
	return strings.Join(out, " "), true
}

func (h *Highlighter) segments(field string) []string {
	if h.tok == nil || !containsJapanese(field) {
		return []string{field}
	}
	segs := h.tok.Wakati(field)
	if len(segs) == 0 || strings.Join(segs, "") != field {
		return []string{field}
	}
	return segs
}

// markSegments flags every segment overlapping an occurrence of a word in the
// normalized concatenation of segs.
func markSegments(segs, words []string) []bool {
	bounds := make([]int, len(segs)+1)
	var norm strings.Builder
	for i, s := range segs {
		norm.WriteString(Normalize(s))
		bounds[i+1] = norm.Len()
	}
	joined := norm.String()

	marked := make([]bool, len(segs))
	for _, w := range words {
		if w == "" {
			continue
		}
		for from := 0; from < len(joined); {
			idx := strings.Index(joined[from:], w)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(w)
			for i := range segs {
				if bounds[i] < end && bounds[i+1] > start {
					marked[i] = true
				}
			}
			from = end
		}
	}
	return marked
}

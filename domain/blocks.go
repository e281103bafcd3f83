package domain

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

type BlockType string

const (
	BlockHero     BlockType = "hero"
	BlockRichText BlockType = "richText"
	BlockFAQ      BlockType = "faq"
	BlockCTA      BlockType = "cta"
)

type FAQItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Block is one entry of the block editor. Fields not used by a type stay empty.
type Block struct {
	ID                 string    `json:"id,omitempty"`
	Type               BlockType `json:"type"`
	Title              string    `json:"title,omitempty"`
	Subtitle           string    `json:"subtitle,omitempty"`
	BackgroundImageURL string    `json:"backgroundImageUrl,omitempty"`
	HTML               string    `json:"html,omitempty"`
	Items              []FAQItem `json:"items,omitempty"`
	Label              string    `json:"label,omitempty"`
	URL                string    `json:"url,omitempty"`
}

// tagRun matches markup that reappears once entities such as &lt;b&gt; are decoded.
var tagRun = regexp.MustCompile(`<[^>]+>`)

// StripHTML keeps text nodes only, separated by single spaces. Entities are decoded and
// script/style bodies dropped. The result never contains a tag.
func StripHTML(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var parts []string
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			text := tagRun.ReplaceAllString(strings.Join(parts, " "), " ")
			return strings.Join(strings.Fields(text), " ")
		case html.StartTagToken:
			if isRawTextTag(z) {
				skip++
			}
		case html.EndTagToken:
			if isRawTextTag(z) && skip > 0 {
				skip--
			}
		case html.TextToken:
			if skip == 0 {
				parts = append(parts, string(z.Text()))
			}
		}
	}
}

func isRawTextTag(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	return string(name) == "script" || string(name) == "style"
}

// BlocksToContentText flattens blocks into searchable plain text.
// CTA URLs and hero images are never part of the text.
func BlocksToContentText(blocks []Block) string {
	parts := make([]string, 0, len(blocks)*2)
	for _, b := range blocks {
		switch b.Type {
		case BlockHero:
			parts = append(parts, b.Title, b.Subtitle)
		case BlockRichText:
			parts = append(parts, StripHTML(b.HTML))
		case BlockFAQ:
			for _, item := range b.Items {
				parts = append(parts, item.Question, item.Answer)
			}
		case BlockCTA:
			parts = append(parts, b.Label)
		}
	}

	nonEmpty := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, " ")
}

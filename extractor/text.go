package extractor

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

const descriptionWordLimit = 100

// StripTags returns the text content of an HTML fragment. Script and style bodies are dropped.
func StripTags(fragment string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(fragment))

	var (
		sb      strings.Builder
		skipped string
	)
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if tokenizer.Err() != io.EOF {
				return strings.TrimSpace(fragment)
			}
			return strings.TrimSpace(sb.String())
		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			if tag := string(name); tag == "script" || tag == "style" {
				skipped = tag
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == skipped {
				skipped = ""
			}
		case html.TextToken:
			if skipped == "" {
				sb.Write(tokenizer.Text())
			}
		}
	}
}

// TrimWords keeps the first limit words of text and marks the cut with an ellipsis.
func TrimWords(text string, limit int) string {
	words := strings.Fields(text)
	if len(words) <= limit {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:limit], " ") + "…"
}

func describeEvent(excerpt, content string) string {
	if excerpt != "" {
		return StripTags(excerpt)
	}
	return TrimWords(StripTags(content), descriptionWordLimit)
}

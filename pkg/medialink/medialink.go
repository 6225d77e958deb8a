// Package medialink provides YouTube link extraction from free-form text
// such as podcast episode descriptions.
package medialink

import (
	"regexp"

	"golang.org/x/text/unicode/norm"
)

// Link is a single YouTube link found in a piece of text.
type Link struct {
	URL     string // Full matched URL, query string included.
	VideoID string // YouTube video ID.
}

// youtubeLinkRegex matches canonical watch and embed URLs as well as
// youtu.be short links. The scheme anchor keeps lookalike hosts
// (youtu.be.evil.com, fakeyoutu.be) from matching, and \b keeps matches
// from starting mid-word inside longer unrelated URLs.
var youtubeLinkRegex = regexp.MustCompile(
	`\bhttps?://(?:www\.|m\.|music\.)?(?:youtube\.com/(?:watch\?v=|embed/)|youtu\.be/)([\w-]+)(?:[?&][^\s<>"']*)?`)

// Extract returns all YouTube links in text, in text order. It never
// fails; text with no recognizable link yields nil.
func Extract(text string) []Link {
	if text == "" {
		return nil
	}

	text = norm.NFKC.String(text)

	matches := youtubeLinkRegex.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	links := make([]Link, 0, len(matches))
	for _, m := range matches {
		links = append(links, Link{URL: m[0], VideoID: m[1]})
	}
	return links
}

// First returns the first YouTube link in text order, if any.
func First(text string) (Link, bool) {
	links := Extract(text)
	if len(links) == 0 {
		return Link{}, false
	}
	return links[0], true
}

package gutenberg

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	ebooksSegment = "/ebooks/"
	textURLFormat = "https://www.gutenberg.org/cache/epub/%s/pg%s.txt"
)

var (
	// ErrEmptyURL is returned when no source URL was supplied.
	ErrEmptyURL = errors.New("no URL provided")
	// ErrMissingEbookID is returned for an /ebooks/ URL with nothing after the segment.
	ErrMissingEbookID = errors.New("ebook URL has no id")
)

// Direct text links: /cache/epub/{id}/pg{id}.txt and /files/{id}/{id}-0.txt.
var textLinkID = regexp.MustCompile(`/(?:cache/epub|files)/(\d+)/`)

// NormalizeURL turns a catalog URL such as https://www.gutenberg.org/ebooks/2701
// into the plain-text download URL. Any other URL is returned unchanged.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyURL
	}

	if !strings.Contains(raw, ebooksSegment) {
		return raw, nil
	}

	id := ebooksID(raw)
	if id == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingEbookID, raw)
	}
	return TextURL(id), nil
}

// TextURL returns the plain-text download URL for an ebook id.
func TextURL(id string) string {
	return fmt.Sprintf(textURLFormat, id, id)
}

// EbookID returns the ebook id carried by a catalog or text URL, or "" if none.
func EbookID(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, ebooksSegment) {
		return ebooksID(raw)
	}
	if m := textLinkID.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return ""
}

func ebooksID(raw string) string {
	i := strings.LastIndex(raw, ebooksSegment)
	return strings.Trim(raw[i+len(ebooksSegment):], "/")
}

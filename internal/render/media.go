package render

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// coverTransform is spliced into the image host's path right after the
// upload segment: pad every cover to the same 2:3 frame.
const coverTransform = "w_300,h_450,c_pad,b_auto/"

const uploadSegment = "/upload/"

// CoverURL resolves the image shown for a book: the sheet's cover with
// the standard transform applied, or a synthesized text placeholder
// when the sheet has no cover.
func CoverURL(imageURL, title string) string {
	if imageURL != "" {
		return transformCover(imageURL)
	}
	return placeholderCover(title)
}

// transformCover inserts the crop/pad directive into a hosted image
// URL. A URL without the expected path segment passes through untouched.
func transformCover(rawURL string) string {
	i := strings.Index(rawURL, uploadSegment)
	if i < 0 {
		return rawURL
	}
	cut := i + len(uploadSegment)
	return rawURL[:cut] + coverTransform + rawURL[cut:]
}

// titleFontSize picks the overlay font for a synthesized cover so long
// titles still fit the frame.
func titleFontSize(title string) int {
	switch n := utf8.RuneCountInString(title); {
	case n > 55:
		return 22
	case n > 25:
		return 30
	default:
		return 42
	}
}

// placeholderCover builds a text-overlay image URL for books with no
// cover in the sheet: the title rendered onto a blank frame, signed
// with the author's name.
func placeholderCover(title string) string {
	return fmt.Sprintf(
		"https://res.cloudinary.com/msimonson/image/upload/w_300,h_450,c_pad,b_rgb:f4f1ea/"+
			"l_text:Georgia_%d:%s,co_rgb:3a3a3a,w_240,c_fit/"+
			"l_text:Georgia_16:Mart%%C3%%ADn%%20Simonson,co_rgb:8a8a8a,g_south,y_40/blank_cover.png",
		titleFontSize(title), url.PathEscape(title))
}

const videoIDLength = 11

var videoIDPattern = regexp.MustCompile(`(?:youtu\.be/|youtube\.com/(?:watch\?v=|embed/|shorts/))([A-Za-z0-9_-]+)`)

// VideoID extracts the video identifier from the known link shapes
// (youtu.be, watch, embed, shorts). It returns "" unless the link
// matches and the identifier is exactly 11 characters.
func VideoID(link string) string {
	m := videoIDPattern.FindStringSubmatch(link)
	if m == nil || len(m[1]) != videoIDLength {
		return ""
	}
	return m[1]
}

// EmbedURL builds the iframe source for a validated video identifier.
func EmbedURL(id string) string {
	return "https://www.youtube.com/embed/" + id
}

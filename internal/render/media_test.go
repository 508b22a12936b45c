package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransformCoverInsertsDirective(t *testing.T) {
	got := transformCover("https://res.cloudinary.com/msimonson/image/upload/v123/covers/cuentos.jpg")
	require.Equal(t,
		"https://res.cloudinary.com/msimonson/image/upload/w_300,h_450,c_pad,b_auto/v123/covers/cuentos.jpg",
		got)
}

func TestTransformCoverPassThrough(t *testing.T) {
	// A URL without the expected path segment is left untouched.
	url := "https://example.com/images/cuentos.jpg"
	require.Equal(t, url, transformCover(url))
}

func TestTitleFontSizeTiers(t *testing.T) {
	require.Equal(t, 22, titleFontSize(strings.Repeat("a", 60)))
	require.Equal(t, 30, titleFontSize(strings.Repeat("a", 30)))
	require.Equal(t, 42, titleFontSize(strings.Repeat("a", 10)))

	// Boundaries: 55 and 25 stay in the larger tier.
	require.Equal(t, 30, titleFontSize(strings.Repeat("a", 55)))
	require.Equal(t, 42, titleFontSize(strings.Repeat("a", 25)))
}

func TestPlaceholderCoverEncodesTitle(t *testing.T) {
	got := placeholderCover("Cuentos & más")
	require.Contains(t, got, "l_text:Georgia_42:")
	require.Contains(t, got, "Cuentos%20&%20m%C3%A1s")
	require.NotContains(t, got, "Cuentos & más")
}

func TestCoverURLPrefersSheetImage(t *testing.T) {
	got := CoverURL("https://res.cloudinary.com/msimonson/image/upload/v1/c.jpg", "Cuentos")
	require.Contains(t, got, "/upload/w_300,h_450,c_pad,b_auto/")

	placeholder := CoverURL("", "Cuentos")
	require.Contains(t, placeholder, "blank_cover.png")
}

func TestVideoIDKnownShapes(t *testing.T) {
	for _, link := range []string{
		"https://youtu.be/dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ",
	} {
		require.Equal(t, "dQw4w9WgXcQ", VideoID(link), link)
	}
}

func TestVideoIDRejectsWrongLength(t *testing.T) {
	require.Equal(t, "", VideoID("https://youtu.be/short"))
	require.Equal(t, "", VideoID("https://youtu.be/waytoolongidentifier"))
	require.Equal(t, "", VideoID("https://vimeo.com/123456789"))
	require.Equal(t, "", VideoID(""))
}

func TestEmbedURL(t *testing.T) {
	require.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", EmbedURL("dQw4w9WgXcQ"))
}

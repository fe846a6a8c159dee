package cloudinary

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPublicIDFromURL(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v1712345678/rci/documents/tor-1712345678.pdf": "rci/documents/tor-1712345678",
		"https://res.cloudinary.com/demo/image/upload/rci/documents/id-card.png":                    "rci/documents/id-card",
		"https://example.com/files/tor.pdf":                                                         "",
	}
	for url, want := range cases {
		require.Equal(t, want, PublicIDFromURL(url), url)
	}
}

func TestBuildPublicID(t *testing.T) {
	now := time.Unix(1712345678, 0)
	require.Equal(t, "Transcript-of-Records-1712345678", buildPublicID("Transcript of Records.pdf", now))
	require.Equal(t, "document-1712345678", buildPublicID("???.pdf", now))
}

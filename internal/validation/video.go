package validation

import "fmt"

// videoIDLen is the fixed length of a YouTube video id.
const videoIDLen = 11

// videoURLPrefixes are the accepted URL shapes a video reference may arrive
// in. The id is the run of characters immediately after the prefix.
var videoURLPrefixes = []string{
	"https://www.youtube.com/watch?v=",
	"https://youtube.com/watch?v=",
	"https://youtu.be/",
}

// NormalizeVideoID reduces a video reference to its 11-character id.
// A bare 11-character id passes through unchanged; a URL in one of the known
// shapes has its id extracted (trailing query parameters are ignored).
// Anything else is rejected.
func NormalizeVideoID(ref string) (string, error) {
	if len(ref) == videoIDLen {
		return ref, nil
	}

	for _, prefix := range videoURLPrefixes {
		if len(ref) >= len(prefix)+videoIDLen && ref[:len(prefix)] == prefix {
			return ref[len(prefix) : len(prefix)+videoIDLen], nil
		}
	}

	return "", fmt.Errorf("invalid video reference: expected an 11-character id or a known YouTube URL")
}

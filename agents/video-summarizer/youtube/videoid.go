package youtube

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidReference is returned when no video id can be extracted from the
// user-supplied URL. No network call is made in that case.
var ErrInvalidReference = errors.New("invalid YouTube URL")

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// path prefixes whose next segment is the video id
var idPathPrefixes = []string{"embed", "shorts", "live", "v", "e"}

// ExtractVideoID pulls the video id out of a watch URL (v query parameter) or
// a youtu.be short link. Other youtube.com paths fall back to everything after
// the host, which must itself be a valid id.
func ExtractVideoID(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty reference", ErrInvalidReference)
	}

	candidate := trimmed
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}

	u, err := url.Parse(candidate)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidReference, raw)
	}

	host := strings.ToLower(u.Hostname())
	for _, prefix := range []string{"www.", "m.", "music."} {
		host = strings.TrimPrefix(host, prefix)
	}

	path := strings.Trim(u.Path, "/")

	var id string
	switch host {
	case "youtu.be":
		id, _, _ = strings.Cut(path, "/")
	case "youtube.com", "youtube-nocookie.com":
		if v := u.Query().Get("v"); v != "" {
			id = v
			break
		}
		segments := strings.Split(path, "/")
		if len(segments) == 2 && contains(idPathPrefixes, segments[0]) {
			id = segments[1]
			break
		}
		id = path
	default:
		return "", fmt.Errorf("%w: %q is not a YouTube host", ErrInvalidReference, u.Hostname())
	}

	if id == "" || !videoIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: no video id in %q", ErrInvalidReference, raw)
	}
	return id, nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

package github

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// ErrInvalidRef is returned when a repository reference cannot be parsed.
var ErrInvalidRef = errors.New("invalid repository reference")

var segmentRe = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Ref identifies a repository by owner and name.
type Ref struct {
	Owner string `json:"owner"`
	Name  string `json:"name"`
}

// String returns "owner/name".
func (r Ref) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRef accepts "owner/name" or a github.com URL such as
// "https://github.com/owner/name.git". URLs may point below the repository
// root (for example /tree/main); only owner and name are kept.
func ParseRef(s string) (Ref, error) {
	raw := strings.TrimSpace(s)
	path := raw
	isURL := false

	switch {
	case strings.Contains(raw, "://"):
		u, err := url.Parse(raw)
		if err != nil {
			return Ref{}, fmt.Errorf("%w: %q", ErrInvalidRef, s)
		}
		if !strings.EqualFold(strings.TrimPrefix(u.Host, "www."), "github.com") {
			return Ref{}, fmt.Errorf("%w: host %q is not github.com", ErrInvalidRef, u.Host)
		}
		path, isURL = u.Path, true
	case strings.HasPrefix(raw, "github.com/"):
		path, isURL = strings.TrimPrefix(raw, "github.com/"), true
	}

	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) < 2 || (!isURL && len(parts) != 2) {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidRef, s)
	}

	ref := Ref{Owner: parts[0], Name: strings.TrimSuffix(parts[1], ".git")}
	if !segmentRe.MatchString(ref.Owner) || !segmentRe.MatchString(ref.Name) {
		return Ref{}, fmt.Errorf("%w: %q", ErrInvalidRef, s)
	}

	return ref, nil
}

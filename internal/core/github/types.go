package github

import "time"

// Repository is the metadata shown for an analyzed repository.
type Repository struct {
	FullName      string    `json:"full_name"`
	Description   string    `json:"description"`
	HTMLURL       string    `json:"html_url"`
	Homepage      string    `json:"homepage,omitempty"`
	Language      string    `json:"language"`
	DefaultBranch string    `json:"default_branch"`
	Stars         int       `json:"stargazers_count"`
	Forks         int       `json:"forks_count"`
	OpenIssues    int       `json:"open_issues_count"`
	Topics        []string  `json:"topics"`
	License       string    `json:"license,omitempty"`
	Archived      bool      `json:"archived"`
	PushedAt      time.Time `json:"pushed_at"`
}

// Readme is the decoded README of a repository.
type Readme struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// TreeEntry is a single path in the repository tree.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"` // "blob" or "tree"
	Size int64  `json:"size,omitempty"`
}

// IsDir reports whether the entry is a directory.
func (e TreeEntry) IsDir() bool { return e.Type == "tree" }

// Tree is the recursive file listing of a branch.
type Tree struct {
	Entries   []TreeEntry `json:"entries"`
	Truncated bool        `json:"truncated"`
	Excluded  int         `json:"excluded"`
}

// Analysis aggregates everything fetched for one repository. Readme and Tree
// are nil when they could not be fetched; the reason is recorded in Warnings.
// Partial is set when a fetch failed, as opposed to the repository simply
// having no README or no commits. Partial analyses are never cached.
type Analysis struct {
	Ref        Ref        `json:"ref"`
	Repository Repository `json:"repository"`
	Readme     *Readme    `json:"readme"`
	Tree       *Tree      `json:"tree"`
	Warnings   []string   `json:"warnings,omitempty"`
	FetchedAt  time.Time  `json:"fetched_at"`
	Cached     bool       `json:"cached"`
	Partial    bool       `json:"partial,omitempty"`
}

// apiRepository mirrors the subset of the REST payload we decode.
type apiRepository struct {
	FullName      string    `json:"full_name"`
	Description   *string   `json:"description"`
	HTMLURL       string    `json:"html_url"`
	Homepage      *string   `json:"homepage"`
	Language      *string   `json:"language"`
	DefaultBranch string    `json:"default_branch"`
	Stars         int       `json:"stargazers_count"`
	Forks         int       `json:"forks_count"`
	OpenIssues    int       `json:"open_issues_count"`
	Topics        []string  `json:"topics"`
	Archived      bool      `json:"archived"`
	PushedAt      time.Time `json:"pushed_at"`
	License       *struct {
		SPDXID string `json:"spdx_id"`
		Name   string `json:"name"`
	} `json:"license"`
}

func (a apiRepository) toRepository() Repository {
	r := Repository{
		FullName:      a.FullName,
		HTMLURL:       a.HTMLURL,
		DefaultBranch: a.DefaultBranch,
		Stars:         a.Stars,
		Forks:         a.Forks,
		OpenIssues:    a.OpenIssues,
		Topics:        a.Topics,
		Archived:      a.Archived,
		PushedAt:      a.PushedAt,
	}
	if a.Description != nil {
		r.Description = *a.Description
	}
	if a.Homepage != nil {
		r.Homepage = *a.Homepage
	}
	if a.Language != nil {
		r.Language = *a.Language
	}
	if a.License != nil {
		r.License = a.License.SPDXID
		if r.License == "" || r.License == "NOASSERTION" {
			r.License = a.License.Name
		}
	}
	return r
}

type apiContent struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type apiTree struct {
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"`
		Size int64  `json:"size"`
	} `json:"tree"`
	Truncated bool `json:"truncated"`
}

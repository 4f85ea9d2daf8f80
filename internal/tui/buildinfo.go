package tui

import "strings"

// BuildInfo is the version stamp shown next to the title.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// Label renders " v1.2.3 (abc1234)", omitting what is unknown. Development
// builds without a version render nothing.
func (b BuildInfo) Label() string {
	if b.Version == "" || b.Version == "dev" && b.Commit == "" {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(" ")
	sb.WriteString(b.Version)
	if c := b.Commit; c != "" && c != "none" {
		if len(c) > 7 {
			c = c[:7]
		}
		sb.WriteString(" (" + c + ")")
	}
	return sb.String()
}

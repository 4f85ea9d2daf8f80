package styles

import (
	"path"
	"strings"

	"github.com/Meet0105/repoza-sub001/internal/core/notify"
)

// Tip: To find icons use https://github.com/loichyan/nerdfix

var (
	IconGithub = " "
	IconStar   = "★"
	IconFork   = ""
	IconIssue  = ""
	IconBook   = ""
)

// Notification icons, keyed by kind in KindIcon.
var (
	IconNotifySuccess = "✔"
	IconNotifyError   = "✘"
	IconNotifyWarning = "▲"
	IconNotifyInfo    = "●"
)

// KindIcon returns the icon shown next to a notification of the given kind.
func KindIcon(k notify.Kind) string {
	switch k {
	case notify.KindSuccess:
		return IconNotifySuccess
	case notify.KindError:
		return IconNotifyError
	case notify.KindWarning:
		return IconNotifyWarning
	default:
		return IconNotifyInfo
	}
}

// Directory icons
var (
	IconFolderClosed = "" //
)

// File type icons
var (
	IconFileDefault  = " " //
	IconFileGo       = " " //
	IconFileJS       = "󰌞 " //
	IconFileTS       = "󰛦 " //
	IconFilePython   = " " //
	IconFileMarkdown = " " //
	IconFileJSON     = " " //
	IconFileYAML     = "" //
	IconFileRust     = " " //
	IconFileShell    = " " //
	IconFileDocker   = "󰡨 " //
)

var extIcons = map[string]string{
	".go":   IconFileGo,
	".js":   IconFileJS,
	".jsx":  IconFileJS,
	".ts":   IconFileTS,
	".tsx":  IconFileTS,
	".py":   IconFilePython,
	".md":   IconFileMarkdown,
	".json": IconFileJSON,
	".yaml": IconFileYAML,
	".yml":  IconFileYAML,
	".rs":   IconFileRust,
	".sh":   IconFileShell,
}

// FileIcon returns an icon for a repository path.
func FileIcon(p string, dir bool) string {
	if dir {
		return IconFolderClosed
	}
	if strings.EqualFold(path.Base(p), "Dockerfile") {
		return IconFileDocker
	}
	if icon, ok := extIcons[strings.ToLower(path.Ext(p))]; ok {
		return icon
	}
	return IconFileDefault
}

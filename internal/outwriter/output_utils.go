package outwriter

import (
	"strconv"
	"time"
)

// truncatePath shortens path to maxWidth runes, keeping the end.
func truncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) <= maxWidth {
		return path
	}
	if maxWidth <= 3 {
		return string(runes[len(runes)-maxWidth:])
	}
	return "..." + string(runes[len(runes)-maxWidth+3:])
}

// shortHash abbreviates a commit hash for display.
func shortHash(hash *string) string {
	if hash == nil {
		return "-"
	}
	if len(*hash) > 10 {
		return (*hash)[:10]
	}
	return *hash
}

func formatOptional(v *int64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(*v, 10)
}

func formatOptionalCSV(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

// formatDuration renders milliseconds the way time.Duration prints them.
func formatDuration(ms *int64) string {
	if ms == nil {
		return "-"
	}
	return (time.Duration(*ms) * time.Millisecond).String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

package outwriter

import (
	"os"

	"github.com/huangsam/hoc/internal/contract"
	"golang.org/x/term"
)

// Bounds for the repository path column.
const (
	minPathWidth = 15
	maxPathWidth = 70
)

// GetMaxTablePathWidth calculates the maximum width for repository paths in
// table output based on terminal width.
func GetMaxTablePathWidth(cfg *contract.Config) int {
	termWidth := cfg.Width
	if termWidth == 0 { // Not set by override
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80
		} else {
			termWidth = detectedWidth
		}
	}
	return pathWidthFor(termWidth)
}

// pathWidthFor reserves room for the fixed columns of the runs table.
func pathWidthFor(termWidth int) int {
	// ID + Started + Head + Renames + Commits + Hits + Duration + Status, with borders
	const fixedColumns = 95

	available := termWidth - fixedColumns
	if available < minPathWidth {
		return minPathWidth
	}
	if available > maxPathWidth {
		return maxPathWidth
	}
	return available
}

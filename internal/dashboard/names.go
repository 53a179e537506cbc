package dashboard

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "~"

// ShortenName fits name into width display cells. Pod names end in a
// generated suffix that tells replicas apart, so the middle is elided
// rather than the tail: "distributed-training-resnet-x7k2p" at width 20
// becomes "distribute~net-x7k2p".
func ShortenName(name string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(name) <= width {
		return name
	}
	if width <= 2 {
		return runewidth.Truncate(name, width, "")
	}

	budget := width - runewidth.StringWidth(ellipsis)
	tailWidth := budget / 2
	headWidth := budget - tailWidth

	head := runewidth.Truncate(name, headWidth, "")
	tail := truncateLeft(name, tailWidth)
	return head + ellipsis + tail
}

// ShortenLabel keeps a tree prefix intact and shortens only the name after it
func ShortenLabel(label string, width int) string {
	for _, prefix := range []string{treeIndent + treeBranch, treeIndent + treeLast} {
		if strings.HasPrefix(label, prefix) {
			pw := runewidth.StringWidth(prefix)
			if width <= pw {
				return runewidth.Truncate(label, width, "")
			}
			return prefix + ShortenName(strings.TrimPrefix(label, prefix), width-pw)
		}
	}
	return ShortenName(label, width)
}

// truncateLeft returns the longest suffix of s that fits in width cells
func truncateLeft(s string, width int) string {
	runes := []rune(s)
	used := 0
	i := len(runes)
	for i > 0 {
		w := runewidth.RuneWidth(runes[i-1])
		if used+w > width {
			break
		}
		used += w
		i--
	}
	return string(runes[i:])
}

package telemetry

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// formatTimingTree outputs the timing tree in a hierarchical format.
// Example output:
//
//	Total: 125ms
//	├─ parser.load: 85ms
//	│  ├─ parser.parse main.beancount: 45ms
//	│  └─ draft.merge: 5ms
//	└─ checker.replay (40 transactions, ...): 40ms
func formatTimingTree(w io.Writer, root *timerNode) {
	duration := root.end.Sub(root.start)
	_, _ = fmt.Fprintf(w, "%s: %s\n", root.name, formatDuration(duration))
	for i, child := range root.children {
		isLast := i == len(root.children)-1
		formatNode(w, child, "", isLast)
	}
}

// formatNode recursively formats a node and its children.
func formatNode(w io.Writer, node *timerNode, prefix string, isLast bool) {
	duration := node.end.Sub(node.start)

	var branch, extension string
	if isLast {
		branch = "└─ "
		extension = "   "
	} else {
		branch = "├─ "
		extension = "│  "
	}

	// checker.replay(N transactions) timers get a throughput annotation.
	timerName := node.name
	if strings.HasPrefix(node.name, "checker.replay (") && strings.HasSuffix(node.name, " transactions)") {
		countStr := strings.TrimSuffix(strings.TrimPrefix(node.name, "checker.replay ("), " transactions)")
		if count, err := strconv.Atoi(countStr); err == nil && count > 0 {
			durationMs := float64(duration.Nanoseconds()) / 1e6
			if durationMs > 0 {
				txnsPerMs := float64(count) / durationMs
				timerName = fmt.Sprintf("checker.replay (%d transactions, %.1f/ms)", count, txnsPerMs)
			}
		}
	}

	_, _ = fmt.Fprintf(w, "%s%s%s: %s\n", prefix, branch, timerName, formatDuration(duration))

	childPrefix := prefix + extension
	for i, child := range node.children {
		childIsLast := i == len(node.children)-1
		formatNode(w, child, childPrefix, childIsLast)
	}
}

// formatDuration shows microseconds for < 1ms, milliseconds for < 1s,
// seconds otherwise, prefixing with ~ when rounding loses precision.
func formatDuration(d time.Duration) string {
	if d < time.Millisecond {
		us := float64(d) / float64(time.Microsecond)
		return fmt.Sprintf("%.0fµs", us)
	}
	if d < time.Second {
		ms := float64(d) / float64(time.Millisecond)
		truncatedMs := int(ms)
		truncated := time.Duration(truncatedMs) * time.Millisecond
		if d > truncated && d-truncated >= 50*time.Microsecond {
			return fmt.Sprintf("~%.0fms", ms)
		}
		return fmt.Sprintf("%.0fms", ms)
	}
	s := float64(d) / float64(time.Second)
	return fmt.Sprintf("%.2fs", s)
}

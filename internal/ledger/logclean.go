package ledger

import (
	"regexp"
	"strings"
)

// ansiRegex matches ANSI escape sequences
var ansiRegex = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// cleanLogLine strips the Docker multiplexing header, ANSI escape sequences
// and control noise from a line of container output. Returns "" when nothing
// printable remains.
func cleanLogLine(line string) string {
	if len(line) == 0 {
		return ""
	}

	// Docker multiplexed streams prefix each frame with an 8-byte header:
	// [STREAM_TYPE][0][0][0][SIZE]
	if len(line) >= 8 && (line[0] == 1 || line[0] == 2) {
		if len(line) <= 8 {
			return ""
		}
		line = line[8:]
	}

	line = ansiRegex.ReplaceAllString(line, "")

	line = strings.ReplaceAll(line, "\x00", "")
	line = strings.ReplaceAll(line, "\x01", "")
	line = strings.ReplaceAll(line, "\x02", "")
	line = strings.ReplaceAll(line, "\x03", "")

	line = strings.TrimSpace(line)
	if len(line) == 0 {
		return ""
	}

	// Drop lines that are mostly binary garbage
	printable := 0
	for _, r := range line {
		if r >= 32 && r <= 126 {
			printable++
		}
	}
	if float64(printable)/float64(len(line)) < 0.5 {
		return ""
	}

	return line
}

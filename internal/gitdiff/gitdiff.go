// Package gitdiff turns `git diff` output into changed-file line sets. The
// CLI uses it as a cheap staleness pre-filter: a stored snapshot whose files
// appear here is worth a drift check before any full rescan.
package gitdiff

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// ChangedFile is one file touched since the base ref, with the line numbers
// changed on the new side of the diff.
type ChangedFile struct {
	Path  string
	Lines []int
}

// chunkHeader matches "@@ -oldStart,oldLen +newStart,newLen @@"; only the
// new side matters here.
var chunkHeader = regexp.MustCompile(`^@@ \-\d+(?:,\d+)? \+(\d+)(?:,(\d+))? @@`)

// Changes runs git diff against baseRef inside root. The repository root is
// explicit; nothing is discovered from the working directory.
func Changes(root, baseRef string) ([]ChangedFile, error) {
	cmd := exec.Command("git", "-C", root, "diff", "-U0", baseRef)
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git diff failed: %w", err)
	}
	return ParseDiff(output)
}

// ParseDiff extracts changed files and new-side line numbers from unified
// diff output.
func ParseDiff(output []byte) ([]ChangedFile, error) {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	var changes []ChangedFile
	var current *ChangedFile

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, "diff --git") {
			parts := strings.Fields(line)
			if len(parts) >= 4 {
				if current != nil {
					changes = append(changes, *current)
				}
				current = &ChangedFile{Path: strings.TrimPrefix(parts[3], "b/")}
			}
			continue
		}
		if current == nil || !strings.HasPrefix(line, "@@") {
			continue
		}

		m := chunkHeader.FindStringSubmatch(line)
		if len(m) < 2 {
			continue
		}
		start, _ := strconv.Atoi(m[1])
		count := 1
		if len(m) > 2 && m[2] != "" {
			count, _ = strconv.Atoi(m[2])
		}
		// A zero-length new side is a pure deletion; there are no new-side
		// lines to record but the file still counts as changed.
		for i := 0; i < count; i++ {
			current.Lines = append(current.Lines, start+i)
		}
	}

	if current != nil {
		changes = append(changes, *current)
	}
	return changes, scanner.Err()
}

// Paths returns just the file paths of a change set.
func Paths(changes []ChangedFile) []string {
	out := make([]string, 0, len(changes))
	for _, c := range changes {
		out = append(out, c.Path)
	}
	return out
}

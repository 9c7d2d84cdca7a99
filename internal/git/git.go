// Package git captures the commits made in a repository while a session was
// active.
package git

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/akoskomuves/promptly/internal/session"
)

// commitSeparator starts every commit block in the log output.
const commitSeparator = "---PROMPTLY_SEP---"

// commandTimeout bounds each git invocation.
const commandTimeout = 10 * time.Second

var (
	filesRe      = regexp.MustCompile(`(\d+) files? changed`)
	insertionsRe = regexp.MustCompile(`(\d+) insertions?\(\+\)`)
	deletionsRe  = regexp.MustCompile(`(\d+) deletions?\(-\)`)
)

// instructionFiles are the base names of assistant instruction files.
var instructionFiles = map[string]bool{
	"CLAUDE.md":               true,
	"AGENTS.md":               true,
	"GEMINI.md":               true,
	".cursorrules":            true,
	".windsurfrules":          true,
	"copilot-instructions.md": true,
}

// run executes git with args in dir and returns its stdout.
var run = func(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("git %s: %s", args[0], strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}
	return string(out), nil
}

// Capture collects the branch and the commits made in dir since the given
// time. It returns nil without error when dir is not inside a git work tree
// or git is not installed.
func Capture(ctx context.Context, dir string, since time.Time) (*session.GitActivity, error) {
	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	if _, err := run(ctx, dir, "rev-parse", "--is-inside-work-tree"); err != nil {
		return nil, nil
	}

	act := &session.GitActivity{Branch: "unknown"}
	if out, err := run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		if b := strings.TrimSpace(out); b != "" && b != "HEAD" {
			act.Branch = b
		}
	}

	sinceArg := "--since=" + since.Format(time.RFC3339)
	logOut, err := run(ctx, dir, "log", sinceArg,
		"--format="+commitSeparator+"%n%h%n%s%n%aI", "--shortstat")
	if err != nil {
		return nil, err
	}
	act.Commits = ParseLog(logOut)
	for _, c := range act.Commits {
		act.TotalInsertions += c.Insertions
		act.TotalDeletions += c.Deletions
		act.TotalFilesChanged += c.FilesChanged
	}
	act.TotalCommits = len(act.Commits)

	if len(act.Commits) > 0 {
		names, err := run(ctx, dir, "log", sinceArg, "--format=", "--name-only")
		if err != nil {
			return nil, err
		}
		act.InstructionFileChanges = InstructionFiles(strings.Split(names, "\n"))
	}
	return act, nil
}

// ParseLog parses `git log --shortstat` output written with the commit
// separator format. Blocks missing a hash, subject or date are dropped.
func ParseLog(out string) []session.GitCommit {
	commits := []session.GitCommit{}
	for _, block := range strings.Split(out, commitSeparator) {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		if len(lines) < 3 {
			continue
		}
		stat := strings.Join(lines[3:], " ")
		commits = append(commits, session.GitCommit{
			Hash:         strings.TrimSpace(lines[0]),
			Message:      strings.TrimSpace(lines[1]),
			Timestamp:    strings.TrimSpace(lines[2]),
			FilesChanged: statCount(filesRe, stat),
			Insertions:   statCount(insertionsRe, stat),
			Deletions:    statCount(deletionsRe, stat),
		})
	}
	return commits
}

func statCount(re *regexp.Regexp, stat string) int {
	m := re.FindStringSubmatch(stat)
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// InstructionFiles returns the instruction files among the changed paths,
// deduplicated in first-seen order.
func InstructionFiles(paths []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" || seen[p] || !instructionFiles[path.Base(p)] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

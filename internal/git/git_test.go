package git

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akoskomuves/promptly/internal/session"
)

const shortstatLog = `---PROMPTLY_SEP---
a1b2c3d
fix: login redirect loop
2026-03-10T10:15:00+01:00

 3 files changed, 42 insertions(+), 7 deletions(-)
---PROMPTLY_SEP---
e4f5a6b
docs: update CLAUDE.md
2026-03-10T09:40:00+01:00

 1 file changed, 1 insertion(+)
---PROMPTLY_SEP---
c7d8e9f
chore: empty commit
2026-03-10T09:30:00+01:00
`

func TestParseLog(t *testing.T) {
	got := ParseLog(shortstatLog)

	want := []session.GitCommit{
		{Hash: "a1b2c3d", Message: "fix: login redirect loop", Timestamp: "2026-03-10T10:15:00+01:00", FilesChanged: 3, Insertions: 42, Deletions: 7},
		{Hash: "e4f5a6b", Message: "docs: update CLAUDE.md", Timestamp: "2026-03-10T09:40:00+01:00", FilesChanged: 1, Insertions: 1},
		{Hash: "c7d8e9f", Message: "chore: empty commit", Timestamp: "2026-03-10T09:30:00+01:00"},
	}
	assert.Equal(t, want, got)
}

func TestParseLog_DeletionsOnlyAndTruncatedBlocks(t *testing.T) {
	out := commitSeparator + "\nabc\nrefactor: drop dead code\n2026-03-10T09:00:00Z\n\n 2 files changed, 30 deletions(-)\n" +
		commitSeparator + "\nbroken\n"

	got := ParseLog(out)
	require.Len(t, got, 1)
	assert.Equal(t, 2, got[0].FilesChanged)
	assert.Equal(t, 0, got[0].Insertions)
	assert.Equal(t, 30, got[0].Deletions)

	assert.Empty(t, ParseLog(""))
}

func TestInstructionFiles(t *testing.T) {
	got := InstructionFiles([]string{
		"internal/app/finish.go",
		"CLAUDE.md",
		"",
		".claude/CLAUDE.md",
		".github/copilot-instructions.md",
		"CLAUDE.md",
		"docs/AGENTS.md",
		".cursorrules",
		"README.md",
	})
	assert.Equal(t, []string{
		"CLAUDE.md",
		".claude/CLAUDE.md",
		".github/copilot-instructions.md",
		"docs/AGENTS.md",
		".cursorrules",
	}, got)
}

// fakeGit answers git invocations from canned output keyed by subcommand.
func fakeGit(t *testing.T, outputs map[string]string, fail map[string]bool) {
	t.Helper()
	orig := run
	t.Cleanup(func() { run = orig })
	run = func(_ context.Context, _ string, args ...string) (string, error) {
		key := strings.Join(args, " ")
		for prefix, out := range outputs {
			if strings.HasPrefix(key, prefix) {
				if fail[prefix] {
					return "", errors.New("exit status 128")
				}
				return out, nil
			}
		}
		return "", nil
	}
}

func TestCapture(t *testing.T) {
	fakeGit(t, map[string]string{
		"rev-parse --is-inside-work-tree": "true\n",
		"rev-parse --abbrev-ref HEAD":     "fix/login\n",
		"log --since=2026-03-10T09:00:00Z --format=" + commitSeparator: shortstatLog,
		"log --since=2026-03-10T09:00:00Z --format= --name-only":       "internal/auth/login.go\n\nCLAUDE.md\ninternal/auth/login.go\n",
	}, nil)

	act, err := Capture(context.Background(), ".", time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, act)

	assert.Equal(t, "fix/login", act.Branch)
	assert.Equal(t, 3, act.TotalCommits)
	assert.Equal(t, 43, act.TotalInsertions)
	assert.Equal(t, 7, act.TotalDeletions)
	assert.Equal(t, 4, act.TotalFilesChanged)
	assert.Equal(t, []string{"CLAUDE.md"}, act.InstructionFileChanges)
}

func TestCapture_NotARepository(t *testing.T) {
	fakeGit(t, map[string]string{"rev-parse --is-inside-work-tree": ""},
		map[string]bool{"rev-parse --is-inside-work-tree": true})

	act, err := Capture(context.Background(), t.TempDir(), time.Now())
	require.NoError(t, err)
	assert.Nil(t, act)
}

func TestCapture_DetachedHeadNoCommits(t *testing.T) {
	fakeGit(t, map[string]string{
		"rev-parse --is-inside-work-tree": "true\n",
		"rev-parse --abbrev-ref HEAD":     "HEAD\n",
		"log ":                            "",
	}, nil)

	act, err := Capture(context.Background(), ".", time.Now())
	require.NoError(t, err)
	require.NotNil(t, act)
	assert.Equal(t, "unknown", act.Branch)
	assert.Equal(t, 0, act.TotalCommits)
	assert.Empty(t, act.Commits)
	assert.Nil(t, act.InstructionFileChanges)
}

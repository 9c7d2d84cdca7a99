package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBuffer(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "buffer.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadBuffer_Missing(t *testing.T) {
	b, err := ReadBuffer(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestReadBuffer_Invalid(t *testing.T) {
	_, err := ReadBuffer(writeBuffer(t, "{not json"))
	assert.Error(t, err)
}

func TestReadBuffer_Full(t *testing.T) {
	path := writeBuffer(t, `{
		"ticketId": "AUTH-1",
		"conversations": [
			{"role":"user","content":"add login"},
			{"role":"assistant","content":"done","toolCalls":[{"name":"Edit","input":{"path":"a.go"}}]}
		],
		"models": ["claude-sonnet-4"],
		"clientTool": "claude-code",
		"totalTokens": 900,
		"promptTokens": 600,
		"responseTokens": 300
	}`)

	b, err := ReadBuffer(path)
	require.NoError(t, err)
	require.NotNil(t, b)

	assert.Len(t, b.Conversations, 2)
	assert.Equal(t, []string{"claude-sonnet-4"}, b.Models)
	assert.Equal(t, "claude-code", b.ClientTool)
	assert.Equal(t, 900, b.TotalTokens)
	// Counts missing from the file are derived from the transcript.
	assert.Equal(t, 2, b.MessageCount)
	assert.Equal(t, 1, b.ToolCallCount)
}

func TestBuffer_Apply(t *testing.T) {
	b := &Buffer{
		Conversations: []Turn{{Role: RoleUser, Content: "hi"}},
		Models:        []string{"gpt-4o"},
		TotalTokens:   10,
		MessageCount:  1,
	}
	rec := Record{ID: "s1"}
	b.Apply(&rec)

	assert.Equal(t, "s1", rec.ID)
	assert.Equal(t, 10, rec.TotalTokens)
	assert.Equal(t, []string{"gpt-4o"}, rec.Models)
	assert.Len(t, rec.Conversations, 1)

	var nilBuf *Buffer
	nilBuf.Apply(&rec)
	assert.Equal(t, 10, rec.TotalTokens)
}

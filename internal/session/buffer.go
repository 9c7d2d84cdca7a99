package session

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
)

// Buffer is the transcript a client-side recorder accumulates while a
// session is active. It is read once when the session finishes.
type Buffer struct {
	Conversations  []Turn
	Models         []string
	ClientTool     string
	TotalTokens    int
	PromptTokens   int
	ResponseTokens int
	MessageCount   int
	ToolCallCount  int
}

// ReadBuffer loads a recorder buffer. A missing file yields a nil buffer
// and no error.
func ReadBuffer(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading buffer: %w", err)
	}

	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("decoding buffer %s: invalid JSON", path)
	}
	v := gjson.ParseBytes(data)
	b := Buffer{
		Conversations:  DecodeTurns(v.Get("conversations").Raw),
		Models:         decodeStrings(v.Get("models").Raw),
		ClientTool:     v.Get("clientTool").String(),
		TotalTokens:    int(v.Get("totalTokens").Int()),
		PromptTokens:   int(v.Get("promptTokens").Int()),
		ResponseTokens: int(v.Get("responseTokens").Int()),
		MessageCount:   int(v.Get("messageCount").Int()),
		ToolCallCount:  int(v.Get("toolCallCount").Int()),
	}
	if b.MessageCount == 0 {
		b.MessageCount = len(b.Conversations)
	}
	if b.ToolCallCount == 0 {
		for _, t := range b.Conversations {
			b.ToolCallCount += len(t.ToolCalls)
		}
	}
	return &b, nil
}

// Apply copies the buffer's transcript and counters onto rec.
func (b *Buffer) Apply(rec *Record) {
	if b == nil {
		return
	}
	rec.Conversations = b.Conversations
	rec.Models = b.Models
	rec.ClientTool = b.ClientTool
	rec.TotalTokens = b.TotalTokens
	rec.PromptTokens = b.PromptTokens
	rec.ResponseTokens = b.ResponseTokens
	rec.MessageCount = b.MessageCount
	rec.ToolCallCount = b.ToolCallCount
}

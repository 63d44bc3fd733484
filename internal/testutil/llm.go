package testutil

import (
	"context"
	"sync"

	"github.com/todump/todump/internal/llm"
)

// ScriptedLLM is an llm.Client that replays canned replies in order. Once the
// script is exhausted the last entry repeats.
type ScriptedLLM struct {
	mu      sync.Mutex
	replies []ScriptedReply
	Calls   []llm.GenerateRequest
}

// ScriptedReply is one canned answer: either text or an error.
type ScriptedReply struct {
	Text string
	Err  error
}

// NewScriptedLLM returns a client that answers with the given replies.
func NewScriptedLLM(replies ...ScriptedReply) *ScriptedLLM {
	return &ScriptedLLM{replies: replies}
}

func (s *ScriptedLLM) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := len(s.Calls)
	s.Calls = append(s.Calls, req)
	if len(s.replies) == 0 {
		return &llm.GenerateResponse{Model: "scripted"}, nil
	}
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	r := s.replies[idx]
	if r.Err != nil {
		return nil, r.Err
	}
	return &llm.GenerateResponse{Text: r.Text, Model: "scripted"}, nil
}

func (s *ScriptedLLM) Available(context.Context) bool { return true }

// CallCount returns how many Generate calls were made.
func (s *ScriptedLLM) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}

package usecase

import (
	"context"
	"errors"
	"sort"

	"notes-agent/internal/domain"
)

type completion struct {
	raw string
	err error
}

type toolReply struct {
	call domain.ToolCall
	err  error
}

// mockLLM replays scripted replies and records what it was asked.
type mockLLM struct {
	completions []completion
	toolReplies []toolReply

	completeCalls int
	toolCalls     int
	lastModel     string
	lastMessages  []domain.ChatMessage
	lastSchema    domain.OutputSchema
	lastTool      domain.ToolDef
}

func (m *mockLLM) Complete(_ context.Context, model string, msgs []domain.ChatMessage, schema domain.OutputSchema) (string, error) {
	if len(m.completions) == 0 {
		return "", errors.New("no completion configured")
	}
	idx := min(m.completeCalls, len(m.completions)-1)
	m.completeCalls++
	m.lastModel, m.lastMessages, m.lastSchema = model, msgs, schema
	return m.completions[idx].raw, m.completions[idx].err
}

func (m *mockLLM) CallTool(_ context.Context, model string, msgs []domain.ChatMessage, tool domain.ToolDef) (domain.ToolCall, error) {
	if len(m.toolReplies) == 0 {
		return domain.ToolCall{}, errors.New("no tool reply configured")
	}
	idx := min(m.toolCalls, len(m.toolReplies)-1)
	m.toolCalls++
	m.lastModel, m.lastMessages, m.lastTool = model, msgs, tool
	return m.toolReplies[idx].call, m.toolReplies[idx].err
}

// memStore is an in-memory NoteStore that counts every call.
type memStore struct {
	notes map[string]string

	insertErr error
	fetchErr  error
	listErr   error

	inserts int
	fetches int
	lists   int
}

func newMemStore(notes map[string]string) *memStore {
	if notes == nil {
		notes = map[string]string{}
	}
	return &memStore{notes: notes}
}

func (s *memStore) InsertIfAbsent(_ context.Context, title, text string) (bool, error) {
	s.inserts++
	if s.insertErr != nil {
		return false, s.insertErr
	}
	if _, ok := s.notes[title]; ok {
		return false, nil
	}
	s.notes[title] = text
	return true, nil
}

func (s *memStore) FetchByTitle(_ context.Context, title string) (*domain.Note, error) {
	s.fetches++
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	text, ok := s.notes[title]
	if !ok {
		return nil, nil
	}
	return &domain.Note{Title: title, Text: text}, nil
}

func (s *memStore) ListTitles(_ context.Context) ([]string, error) {
	s.lists++
	if s.listErr != nil {
		return nil, s.listErr
	}
	titles := []string{}
	for t := range s.notes {
		titles = append(titles, t)
	}
	sort.Strings(titles)
	return titles, nil
}

func (s *memStore) calls() int { return s.inserts + s.fetches + s.lists }

// prefixMatcher resolves to the first candidate starting with the query.
type prefixMatcher struct{}

func (prefixMatcher) Best(query string, candidates []string) (string, bool) {
	for _, c := range candidates {
		if len(query) > 0 && len(c) >= len(query) && c[:len(query)] == query {
			return c, true
		}
	}
	return query, false
}

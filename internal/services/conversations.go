package services

import (
	"context"
	"sync"
	"time"
)

type ConversationStep string

const (
	StepIdle                 ConversationStep = ""
	StepWaitingForStageCount ConversationStep = "waiting_for_stage_count"
)

type ConversationState struct {
	Step        ConversationStep
	ProjectName string
	GroupID     string
	UpdatedAt   time.Time
}

// ConversationStore tracks multi-message flows per user.
type ConversationStore interface {
	Get(ctx context.Context, userID string) (ConversationState, bool)
	Set(ctx context.Context, userID string, state ConversationState)
	Clear(ctx context.Context, userID string)
}

// MemoryConversations keeps state in process. Entries older than ttl are
// treated as idle.
type MemoryConversations struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	states map[string]ConversationState
}

func NewMemoryConversations(ttl time.Duration) *MemoryConversations {
	return &MemoryConversations{ttl: ttl, now: time.Now, states: map[string]ConversationState{}}
}

func (m *MemoryConversations) Get(_ context.Context, userID string) (ConversationState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state, ok := m.states[userID]
	if !ok {
		return ConversationState{}, false
	}
	if m.ttl > 0 && m.now().Sub(state.UpdatedAt) > m.ttl {
		delete(m.states, userID)
		return ConversationState{}, false
	}
	return state, true
}

func (m *MemoryConversations) Set(_ context.Context, userID string, state ConversationState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	state.UpdatedAt = m.now()
	m.states[userID] = state
}

func (m *MemoryConversations) Clear(_ context.Context, userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, userID)
}

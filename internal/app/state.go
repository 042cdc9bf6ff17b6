package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AVSAkash/interview-assistant/internal/adapters/repository"
	"github.com/AVSAkash/interview-assistant/internal/adapters/storage"
	"github.com/AVSAkash/interview-assistant/internal/domain/interview"
)

// State is the persisted application state: the active session and the
// candidate registry. It is loaded and saved as one root object.
type State struct {
	Interview  *interview.Session
	Candidates *repository.Registry

	store storage.Store
	key   string
}

// persistedState is the serialized layout of State.
type persistedState struct {
	Interview  *interview.Session   `json:"interview"`
	Candidates *repository.Registry `json:"candidates"`
}

// NewState returns an empty state bound to store under storage.RootKey.
func NewState(store storage.Store) *State {
	candidates, _ := repository.NewRegistry()
	return &State{
		Interview:  interview.NewSession(),
		Candidates: candidates,
		store:      store,
		key:        storage.RootKey,
	}
}

// Load replaces the state with what the store holds. A missing root object
// leaves a fresh state.
func (s *State) Load(ctx context.Context) error {
	data, err := s.store.Load(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	var p persistedState
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}
	if p.Interview == nil {
		p.Interview = interview.NewSession()
	}
	if p.Interview.Questions == nil {
		p.Interview.Questions = []interview.Question{}
	}
	if p.Candidates == nil {
		p.Candidates, _ = repository.NewRegistry()
	}
	s.Interview = p.Interview
	s.Candidates = p.Candidates
	return nil
}

// Save writes the whole state under the root key.
func (s *State) Save(ctx context.Context) error {
	data, err := json.Marshal(persistedState{Interview: s.Interview, Candidates: s.Candidates})
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.store.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

package influencer

import (
	"sync"
	"time"
)

type State struct {
	Selection Selection
	Result    *GenerationResult

	MessageID       int
	AwaitingDetails bool
	Menu            string // "main" | "ethnicity" | "age" | "color" | "hairstyle" | "outfit" | "background"

	UpdatedAt time.Time
}

type Store struct {
	mu sync.Mutex
	m  map[stateKey]*State
}

type stateKey struct {
	ChatID int64
	UserID int64
}

func NewStore() *Store {
	return &Store{m: make(map[stateKey]*State)}
}

func (s *Store) Get(chatID, userID int64) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.getOrCreateLocked(chatID, userID).clone()
}

// Update runs fn on the stored state and re-normalizes the selection, so a
// gender change can never leave a hairstyle from the other list behind.
func (s *Store) Update(chatID, userID int64, fn func(*State)) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.getOrCreateLocked(chatID, userID)
	if fn != nil {
		fn(st)
	}
	st.Selection = Normalize(st.Selection)
	st.UpdatedAt = time.Now()
	return st.clone()
}

func (s *Store) SetResult(chatID, userID int64, res GenerationResult) State {
	return s.Update(chatID, userID, func(st *State) {
		st.Result = &res
	})
}

// Reset restores the default selection but keeps the menu message so the
// bot can keep editing it in place.
func (s *Store) Reset(chatID, userID int64) State {
	return s.Update(chatID, userID, func(st *State) {
		msgID := st.MessageID
		*st = defaultState()
		st.MessageID = msgID
	})
}

func (s *Store) getOrCreateLocked(chatID, userID int64) *State {
	key := stateKey{ChatID: chatID, UserID: userID}
	if st, ok := s.m[key]; ok {
		return st
	}
	st := defaultState()
	s.m[key] = &st
	return s.m[key]
}

func (st *State) clone() State {
	out := *st
	if st.Result != nil {
		res := *st.Result
		out.Result = &res
	}
	return out
}

func defaultState() State {
	return State{
		Selection: DefaultSelection(),
		Menu:      "main",
		UpdatedAt: time.Now(),
	}
}

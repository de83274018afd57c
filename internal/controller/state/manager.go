package state

import (
	"sync"
	"time"
)

// DefaultTTL drops dialogs the user walked away from.
const DefaultTTL = 30 * time.Minute

// Manager хранит диалоги пользователей в памяти процесса, по Telegram ID
type Manager struct {
	mu     sync.RWMutex
	states map[int64]*UserData
	ttl    time.Duration
	now    func() time.Time
}

// NewManager создаёт менеджер состояний с DefaultTTL
func NewManager() *Manager {
	return NewManagerWithTTL(DefaultTTL, time.Now)
}

// NewManagerWithTTL создаёт менеджер с заданным временем жизни диалога; ttl <= 0 отключает истечение
func NewManagerWithTTL(ttl time.Duration, now func() time.Time) *Manager {
	return &Manager{
		states: make(map[int64]*UserData),
		ttl:    ttl,
		now:    now,
	}
}

// GetState returns the dialog step, or StateNone when there is none or it expired.
func (sm *Manager) GetState(telegramID int64) UserState {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if userData := sm.live(telegramID); userData != nil {
		return userData.State
	}
	return StateNone
}

// SetState moves the dialog to state. StateNone ends it and drops its data.
func (sm *Manager) SetState(telegramID int64, state UserState) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if state == StateNone {
		delete(sm.states, telegramID)
		return
	}

	sm.touch(telegramID).State = state
}

// GetData получает значение из данных диалога
func (sm *Manager) GetData(telegramID int64, key string) (any, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	userData := sm.live(telegramID)
	if userData == nil {
		return nil, false
	}
	value, ok := userData.Data[key]
	return value, ok
}

// SetData сохраняет значение в данных диалога и продлевает его жизнь
func (sm *Manager) SetData(telegramID int64, key string, value any) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.touch(telegramID).Data[key] = value
}

// ClearState завершает диалог
func (sm *Manager) ClearState(telegramID int64) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	delete(sm.states, telegramID)
}

// Sweep drops expired dialogs and reports how many were removed.
func (sm *Manager) Sweep() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	removed := 0
	for id := range sm.states {
		if sm.live(id) == nil {
			delete(sm.states, id)
			removed++
		}
	}
	return removed
}

// live must be called with mu held.
func (sm *Manager) live(telegramID int64) *UserData {
	userData, ok := sm.states[telegramID]
	if !ok {
		return nil
	}
	if sm.ttl > 0 && sm.now().Sub(userData.UpdatedAt) > sm.ttl {
		return nil
	}
	return userData
}

// touch must be called with mu held for writing. An expired dialog restarts empty.
func (sm *Manager) touch(telegramID int64) *UserData {
	userData := sm.live(telegramID)
	if userData == nil {
		userData = &UserData{State: StateNone, Data: make(map[string]any)}
		sm.states[telegramID] = userData
	}
	userData.UpdatedAt = sm.now()
	return userData
}

// Get returns typed dialog data; ok is false when the key is missing or has another type.
func Get[T any](sm *Manager, telegramID int64, key string) (T, bool) {
	var zero T
	raw, ok := sm.GetData(telegramID, key)
	if !ok {
		return zero, false
	}
	value, ok := raw.(T)
	if !ok {
		return zero, false
	}
	return value, true
}

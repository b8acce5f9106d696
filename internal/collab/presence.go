package collab

import (
	"maps"
	"slices"
	"sync"
)

// PresenceManager tracks the last cursor and selection reported by each user
// in a room.
type PresenceManager struct {
	mu        sync.RWMutex
	presences map[string]*PresencePayload // userID -> presence
}

func NewPresenceManager() *PresenceManager {
	return &PresenceManager{
		presences: make(map[string]*PresencePayload),
	}
}

func (pm *PresenceManager) Update(userID string, p *PresencePayload) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.presences[userID] = p
}

func (pm *PresenceManager) Remove(userID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	delete(pm.presences, userID)
}

// Snapshot copies the presence map keyed by user id.
func (pm *PresenceManager) Snapshot() map[string]*PresencePayload {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return maps.Clone(pm.presences)
}

// PruneElement drops a deleted element from every selection.
func (pm *PresenceManager) PruneElement(elementID string) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for userID, p := range pm.presences {
		if !slices.Contains(p.Selection, elementID) {
			continue
		}
		next := *p
		next.Selection = slices.DeleteFunc(slices.Clone(p.Selection), func(id string) bool { return id == elementID })
		pm.presences[userID] = &next
	}
}

func (pm *PresenceManager) StateMessage() *Message {
	presences := pm.Snapshot()
	if presences == nil {
		presences = map[string]*PresencePayload{}
	}
	return newMessage(TypePresenceState, PresenceStatePayload{Presences: presences})
}

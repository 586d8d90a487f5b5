// Package session keeps chat sessions in process memory.
package session

import (
	"sync"
	"time"

	"asha/internal/model"
)

// Registry maps session ids to conversation state. Sessions live until the
// process exits; there is no eviction and no cap on the number of sessions.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*model.Session
	now      func() time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*model.Session),
		now:      time.Now,
	}
}

// GetOrCreate returns a copy of the session, creating an empty one first if needed.
func (r *Registry) GetOrCreate(id string) model.Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return snapshot(r.getOrCreateLocked(id))
}

// Get returns a copy of the session and whether it exists.
func (r *Registry) Get(id string) (model.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return model.Session{}, false
	}
	return snapshot(s), true
}

// AppendMessage adds a timestamped entry, keeping only the newest MaxHistory.
func (r *Registry) AppendMessage(id string, role model.Role, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.getOrCreateLocked(id)
	s.History = append(s.History, model.Message{
		Role:      role,
		Content:   content,
		Timestamp: r.now().UTC(),
	})
	if over := len(s.History) - model.MaxHistory; over > 0 {
		s.History = append([]model.Message(nil), s.History[over:]...)
	}
}

// MergeSkills adds skills not already present and returns the merged set.
func (r *Registry) MergeSkills(id string, skills []string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.getOrCreateLocked(id)
	s.UserInfo.Skills = union(s.UserInfo.Skills, skills)
	return append([]string(nil), s.UserInfo.Skills...)
}

// SetName records the user's name when one is known.
func (r *Registry) SetName(id, name string) {
	if name == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getOrCreateLocked(id).UserInfo.Name = name
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) getOrCreateLocked(id string) *model.Session {
	s, ok := r.sessions[id]
	if !ok {
		s = &model.Session{ID: id, History: []model.Message{}}
		r.sessions[id] = s
	}
	return s
}

func snapshot(s *model.Session) model.Session {
	out := model.Session{
		ID:      s.ID,
		History: append([]model.Message{}, s.History...),
		UserInfo: model.UserInfo{
			Name: s.UserInfo.Name,
		},
	}
	if s.UserInfo.Skills != nil {
		out.UserInfo.Skills = append([]string{}, s.UserInfo.Skills...)
	}
	return out
}

// union appends the members of add missing from base, exact-string compare.
func union(base, add []string) []string {
	seen := make(map[string]struct{}, len(base)+len(add))
	out := make([]string, 0, len(base)+len(add))
	for _, list := range [][]string{base, add} {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

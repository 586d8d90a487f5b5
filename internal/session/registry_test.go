package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asha/internal/model"
)

func TestRegistry_GetOrCreate(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Get("s1")
	assert.False(t, ok)

	s := r.GetOrCreate("s1")
	assert.Equal(t, "s1", s.ID)
	assert.Empty(t, s.History)
	assert.Empty(t, s.UserInfo.Skills)

	_, ok = r.Get("s1")
	assert.True(t, ok)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_HistoryBoundedAndOrdered(t *testing.T) {
	r := NewRegistry()

	for i := 0; i < model.MaxHistory; i++ {
		r.AppendMessage("s1", model.RoleUser, fmt.Sprintf("m%d", i))
	}
	s, _ := r.Get("s1")
	require.Len(t, s.History, model.MaxHistory)
	assert.Equal(t, "m0", s.History[0].Content)

	r.AppendMessage("s1", model.RoleAssistant, "m50")
	s, _ = r.Get("s1")
	require.Len(t, s.History, model.MaxHistory)
	assert.Equal(t, "m1", s.History[0].Content)
	assert.Equal(t, "m50", s.History[model.MaxHistory-1].Content)
	for i := 1; i < len(s.History); i++ {
		assert.Equal(t, fmt.Sprintf("m%d", i+1), s.History[i].Content)
	}
}

func TestRegistry_MergeSkillsIsUnion(t *testing.T) {
	r := NewRegistry()

	got := r.MergeSkills("s1", []string{"Go", "SQL"})
	assert.Equal(t, []string{"Go", "SQL"}, got)

	got = r.MergeSkills("s1", []string{"SQL", "go", "Leadership", "Go"})
	assert.Equal(t, []string{"Go", "SQL", "go", "Leadership"}, got)

	got = r.MergeSkills("s1", nil)
	assert.Len(t, got, 4, "merging never shrinks the set")
}

func TestRegistry_SnapshotsAreIsolated(t *testing.T) {
	r := NewRegistry()
	r.MergeSkills("s1", []string{"Go"})
	r.AppendMessage("s1", model.RoleUser, "hello")

	s, _ := r.Get("s1")
	s.UserInfo.Skills[0] = "mutated"
	s.History[0].Content = "mutated"

	fresh, _ := r.Get("s1")
	assert.Equal(t, "Go", fresh.UserInfo.Skills[0])
	assert.Equal(t, "hello", fresh.History[0].Content)
}

func TestRegistry_SetName(t *testing.T) {
	r := NewRegistry()
	r.SetName("s1", "Priya")
	r.SetName("s1", "")

	s, _ := r.Get("s1")
	assert.Equal(t, "Priya", s.UserInfo.Name)
}

func TestRegistry_ConcurrentAppends(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r.AppendMessage("shared", model.RoleUser, fmt.Sprintf("m%d", i))
			r.MergeSkills("shared", []string{fmt.Sprintf("skill%d", i%5)})
		}(i)
	}
	wg.Wait()

	s, _ := r.Get("shared")
	assert.Len(t, s.History, 20)
	assert.Len(t, s.UserInfo.Skills, 5)
}

package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

func TestConversationMemory_Append(t *testing.T) {
	m := NewConversationMemory()

	m.Append("hi", "hello")
	m.Append("jobs?", "yes")

	assert.Equal(t, 2, m.Turns())
	assert.Equal(t, []domain.Entry{
		{Role: domain.RoleUser, Text: "hi"},
		{Role: domain.RoleAssistant, Text: "hello"},
		{Role: domain.RoleUser, Text: "jobs?"},
		{Role: domain.RoleAssistant, Text: "yes"},
	}, m.Entries())
}

func TestConversationMemory_EntriesIsACopy(t *testing.T) {
	m := NewConversationMemory()
	m.Append("hi", "hello")

	entries := m.Entries()
	entries[0].Text = "changed"

	assert.Equal(t, "hi", m.Entries()[0].Text)
}

func TestConversationMemory_ConcurrentAppend(t *testing.T) {
	m := NewConversationMemory()

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Append(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
		}()
	}
	wg.Wait()

	entries := m.Entries()
	require.Len(t, entries, 100)
	for i := 0; i < len(entries); i += 2 {
		assert.Equal(t, domain.RoleUser, entries[i].Role)
		assert.Equal(t, domain.RoleAssistant, entries[i+1].Role)
		assert.Equal(t, entries[i].Text[1:], entries[i+1].Text[1:], "pairs must stay adjacent")
	}
}

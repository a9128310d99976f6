package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_ZeroValueIsEmpty(t *testing.T) {
	var l Ledger
	assert.True(t, l.Empty())
	for _, k := range Kinds {
		assert.Empty(t, l.Created(k))
		assert.Empty(t, l.Updated(k))
	}
}

func TestLedger_RecordsPerKind(t *testing.T) {
	l := New()
	l.RecordCreated(KindBinderItem, Entry{ID: 1, Title: "Intro", Type: "chapter"})
	l.RecordCreated(KindCharacter, Entry{ID: 2, Name: "Ann"})
	l.RecordUpdated(KindCharacter, Entry{ID: 2, Name: "Ann", Fields: []string{"personality"}})
	l.RecordUpdated(KindLocation, Entry{ID: 3, Name: "Harbour", Fields: []string{"atmosphere"}})
	l.RecordCreated(KindPlotThread, Entry{ID: 4, Title: "The heist"})

	require.Len(t, l.CreatedItems, 1)
	assert.Equal(t, "chapter", l.CreatedItems[0].Type)
	assert.Equal(t, "Intro", l.CreatedItems[0].Label())
	assert.Len(t, l.CreatedCharacters, 1)
	assert.Len(t, l.UpdatedCharacters, 1)
	assert.Equal(t, []string{"personality"}, l.UpdatedCharacters[0].Fields)
	assert.Len(t, l.UpdatedLocations, 1)
	assert.Empty(t, l.CreatedLocations)
	assert.Len(t, l.CreatedPlotThreads, 1)
	assert.Equal(t, 5, l.Len())
}

func TestLedger_UpdateCopiesFields(t *testing.T) {
	l := New()
	fields := []string{"title"}
	l.RecordUpdated(KindBinderItem, Entry{ID: 1, Fields: fields})
	fields[0] = "mutated"

	assert.Equal(t, []string{"title"}, l.Updated(KindBinderItem)[0].Fields)
}

func TestLedger_SnapshotIsIndependent(t *testing.T) {
	l := New()
	l.RecordCreated(KindLocation, Entry{ID: 7, Name: "Mill"})

	snap := l.Snapshot()
	l.RecordCreated(KindLocation, Entry{ID: 8, Name: "Bridge"})

	assert.Len(t, snap.CreatedLocations, 1)
	assert.Len(t, l.CreatedLocations, 2)
}

func TestLedger_UnknownKindPanics(t *testing.T) {
	assert.Panics(t, func() { New().RecordCreated(Kind("dragon"), Entry{}) })
}

package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/cloudwego/eino/components/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agent-poc-v1/server/internal/data"
)

const testAccounts = `{
  "account_overview": [
    {"account_id": "A-011977763", "user_id": "3867", "name": "Radiant Aesthetics Group", "status": "active"}
  ]
}`

const testFacilities = `{
  "facility_overview": [
    {"id": "F-013203268", "name": "Diamond Facility", "account_id": "A-011977763"},
    {"id": "F-014411902", "name": "Willow Creek Satellite", "account_id": "A-011977763"}
  ]
}`

const testNotes = `{
  "3867": [
    {"id": "n-1", "user_id": "3867", "title": "older note", "content": "a", "created_at": "2026-07-22T10:15:00Z", "updated_at": "2026-07-22T10:15:00Z"},
    {"id": "n-2", "user_id": "3867", "title": "newer note", "content": "b", "created_at": "2026-08-10T16:40:00Z", "updated_at": "2026-08-10T16:40:00Z"}
  ]
}`

func newTestStore(t *testing.T) *data.Store {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "account_data.json"), []byte(testAccounts), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "facility_data.json"), []byte(testFacilities), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes_data.json"), []byte(testNotes), 0o644))
	return data.NewStore(dir)
}

func findTool(t *testing.T, store *data.Store, name string) tool.InvokableTool {
	t.Helper()
	for _, tl := range GetAgentTools(store) {
		info, err := tl.Info(context.Background())
		require.NoError(t, err)
		if info.Name == name {
			inv, ok := tl.(tool.InvokableTool)
			require.True(t, ok)
			return inv
		}
	}
	t.Fatalf("tool %s not registered", name)
	return nil
}

func invokeTool(t *testing.T, tl tool.InvokableTool, args string) string {
	t.Helper()
	out, err := tl.InvokableRun(context.Background(), args)
	require.NoError(t, err)
	return out
}

func TestGetAgentToolsRegistersAllFour(t *testing.T) {
	store := newTestStore(t)
	ts := GetAgentTools(store)
	require.Len(t, ts, 4)

	infos, err := GetToolInfos(context.Background(), ts)
	require.NoError(t, err)

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	assert.ElementsMatch(t, []string{
		ToolFetchAccountDetails,
		ToolFetchFacilityDetails,
		ToolSaveNotes,
		ToolFetchNotes,
	}, names)
}

func TestFetchAccountDetails(t *testing.T) {
	store := newTestStore(t)
	tl := findTool(t, store, ToolFetchAccountDetails)

	t.Run("by account id", func(t *testing.T) {
		var out FetchAccountDetailsOutput
		require.NoError(t, json.Unmarshal([]byte(invokeTool(t, tl, `{"account_id":"A-011977763"}`)), &out))
		require.Len(t, out.AccountOverview, 1)
		assert.Equal(t, "Radiant Aesthetics Group", out.AccountOverview[0].Name)
		assert.Empty(t, out.Error)
	})

	t.Run("by user id", func(t *testing.T) {
		var out FetchAccountDetailsOutput
		require.NoError(t, json.Unmarshal([]byte(invokeTool(t, tl, `{"user_id":"3867"}`)), &out))
		require.Len(t, out.AccountOverview, 1)
		assert.Equal(t, "A-011977763", out.AccountOverview[0].AccountID)
	})

	t.Run("missing identifiers", func(t *testing.T) {
		var out FetchAccountDetailsOutput
		require.NoError(t, json.Unmarshal([]byte(invokeTool(t, tl, `{}`)), &out))
		assert.Equal(t, ErrCodeInvalidArgument, out.Error)
		assert.Empty(t, out.AccountOverview)
	})

	t.Run("unknown account", func(t *testing.T) {
		var out FetchAccountDetailsOutput
		require.NoError(t, json.Unmarshal([]byte(invokeTool(t, tl, `{"account_id":"A-000"}`)), &out))
		assert.Equal(t, ErrCodeNotFound, out.Error)
	})
}

func TestFetchFacilityDetails(t *testing.T) {
	store := newTestStore(t)
	tl := findTool(t, store, ToolFetchFacilityDetails)

	t.Run("by facility id", func(t *testing.T) {
		var out FetchFacilityDetailsOutput
		require.NoError(t, json.Unmarshal([]byte(invokeTool(t, tl, `{"facility_id":"F-013203268"}`)), &out))
		require.Len(t, out.FacilityOverview, 1)
		assert.Equal(t, "Diamond Facility", out.FacilityOverview[0].Name)
	})

	t.Run("by account id lists all", func(t *testing.T) {
		var out FetchFacilityDetailsOutput
		require.NoError(t, json.Unmarshal([]byte(invokeTool(t, tl, `{"account_id":"A-011977763"}`)), &out))
		assert.Len(t, out.FacilityOverview, 2)
	})

	t.Run("unknown facility", func(t *testing.T) {
		var out FetchFacilityDetailsOutput
		require.NoError(t, json.Unmarshal([]byte(invokeTool(t, tl, `{"facility_id":"F-999"}`)), &out))
		assert.Equal(t, ErrCodeNotFound, out.Error)
	})

	t.Run("missing identifiers", func(t *testing.T) {
		var out FetchFacilityDetailsOutput
		require.NoError(t, json.Unmarshal([]byte(invokeTool(t, tl, `{}`)), &out))
		assert.Equal(t, ErrCodeInvalidArgument, out.Error)
	})
}

func TestSaveNotes(t *testing.T) {
	store := newTestStore(t)
	tl := findTool(t, store, ToolSaveNotes)

	t.Run("missing fields", func(t *testing.T) {
		var out SaveNotesOutput
		require.NoError(t, json.Unmarshal([]byte(invokeTool(t, tl, `{"user_id":"3867"}`)), &out))
		assert.Equal(t, ErrCodeInvalidArgument, out.Error)
		assert.False(t, out.Success)
	})

	t.Run("saves and returns the note", func(t *testing.T) {
		var out SaveNotesOutput
		args := `{"user_id":"3867","title":"follow up","content":"call back next week"}`
		require.NoError(t, json.Unmarshal([]byte(invokeTool(t, tl, args)), &out))
		assert.True(t, out.Success)
		assert.NotEmpty(t, out.NoteID)
		require.Len(t, out.NoteOverview, 1)
		assert.Equal(t, "follow up", out.NoteOverview[0].Title)

		notes, err := store.NotesByUserID("3867")
		require.NoError(t, err)
		assert.Len(t, notes, 3)
	})

	t.Run("saved note comes back first", func(t *testing.T) {
		fetch := findTool(t, store, ToolFetchNotes)

		var out FetchNotesOutput
		require.NoError(t, json.Unmarshal([]byte(invokeTool(t, fetch, `{"user_id":"3867","limit":1}`)), &out))
		require.Len(t, out.NoteOverview, 1)
		assert.Equal(t, "follow up", out.NoteOverview[0].Title)
	})
}

func TestFetchNotes(t *testing.T) {
	store := newTestStore(t)
	tl := findTool(t, store, ToolFetchNotes)

	t.Run("newest first", func(t *testing.T) {
		var out FetchNotesOutput
		require.NoError(t, json.Unmarshal([]byte(invokeTool(t, tl, `{"user_id":"3867"}`)), &out))
		require.Len(t, out.NoteOverview, 2)
		assert.Equal(t, "newer note", out.NoteOverview[0].Title)
		assert.Equal(t, "older note", out.NoteOverview[1].Title)
	})

	t.Run("limit caps the window", func(t *testing.T) {
		var out FetchNotesOutput
		require.NoError(t, json.Unmarshal([]byte(invokeTool(t, tl, `{"user_id":"3867","limit":1}`)), &out))
		require.Len(t, out.NoteOverview, 1)
		assert.Equal(t, "newer note", out.NoteOverview[0].Title)
	})

	t.Run("date filter", func(t *testing.T) {
		var out FetchNotesOutput
		require.NoError(t, json.Unmarshal([]byte(invokeTool(t, tl, `{"user_id":"3867","date":"2026-07-22"}`)), &out))
		require.Len(t, out.NoteOverview, 1)
		assert.Equal(t, "older note", out.NoteOverview[0].Title)
	})

	t.Run("unknown user yields empty", func(t *testing.T) {
		var out FetchNotesOutput
		require.NoError(t, json.Unmarshal([]byte(invokeTool(t, tl, `{"user_id":"9999"}`)), &out))
		assert.Empty(t, out.NoteOverview)
		assert.Equal(t, 0, out.TotalCount)
	})

	t.Run("missing user id", func(t *testing.T) {
		var out FetchNotesOutput
		require.NoError(t, json.Unmarshal([]byte(invokeTool(t, tl, `{}`)), &out))
		assert.Equal(t, ErrCodeInvalidArgument, out.Error)
	})
}

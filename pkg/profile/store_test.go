package profile

import (
	"context"
	"path/filepath"
	"testing"

	"simsetgo/pkg/engine"
	"simsetgo/pkg/simvar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	d, err := InitDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	s := NewSQLiteStore(d)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleProfile() *Profile {
	return &Profile{
		Name:     "Cold and Dark",
		Aircraft: "C172",
		Items: []engine.Item{
			{
				Name:     "ELECTRICAL MASTER BATTERY",
				Unit:     "bool",
				Type:     simvar.TypeInt32,
				Settable: true,
				Value:    "0",
			},
			{
				Name:     "PARKING BRAKE STATE",
				Unit:     "position",
				Type:     simvar.TypeFloat64,
				Settable: true,
				Value:    "1",
				Mappings: []engine.EventMapping{
					{MatchValue: "1", EventName: "PARKING_BRAKES", Param: 0},
					{MatchValue: "0", EventName: "PARKING_BRAKES", Param: 1},
				},
			},
		},
	}
}

func TestStoreRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := sampleProfile()
	require.NoError(t, s.SaveProfile(ctx, p))
	assert.NotEmpty(t, p.ID)

	loaded, err := s.GetProfile(ctx, "Cold and Dark")
	require.NoError(t, err)
	assert.Equal(t, p.ID, loaded.ID)
	assert.Equal(t, "C172", loaded.Aircraft)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, "ELECTRICAL MASTER BATTERY", loaded.Items[0].Name)
	assert.Equal(t, simvar.TypeInt32, loaded.Items[0].Type)
	require.Len(t, loaded.Items[1].Mappings, 2)
	assert.Equal(t, "PARKING_BRAKES", loaded.Items[1].Mappings[0].EventName)
	assert.Equal(t, 1.0, loaded.Items[1].Mappings[1].Param)
}

func TestStoreUpsertReplacesItems(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := sampleProfile()
	require.NoError(t, s.SaveProfile(ctx, p))
	firstID := p.ID

	p.Aircraft = "SR22"
	p.Items = p.Items[:1]
	require.NoError(t, s.SaveProfile(ctx, p))
	assert.Equal(t, firstID, p.ID, "upsert keeps the profile id")

	loaded, err := s.GetProfile(ctx, "Cold and Dark")
	require.NoError(t, err)
	assert.Equal(t, "SR22", loaded.Aircraft)
	assert.Len(t, loaded.Items, 1)
}

func TestStoreListAndDelete(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveProfile(ctx, &Profile{Name: "B"}))
	require.NoError(t, s.SaveProfile(ctx, &Profile{Name: "A"}))

	list, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Name)
	assert.Equal(t, "B", list[1].Name)

	require.NoError(t, s.DeleteProfile(ctx, "A"))
	assert.ErrorIs(t, s.DeleteProfile(ctx, "A"), ErrNotFound)

	_, err = s.GetProfile(ctx, "A")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestYAMLRoundTrip(t *testing.T) {
	p := sampleProfile()
	data, err := Export(p)
	require.NoError(t, err)

	back, err := Import(data)
	require.NoError(t, err)
	assert.Equal(t, p.Name, back.Name)
	assert.Equal(t, p.Aircraft, back.Aircraft)
	require.Len(t, back.Items, 2)
	assert.Equal(t, p.Items[1].Mappings, back.Items[1].Mappings)
	assert.Equal(t, simvar.TypeInt32, back.Items[0].Type)
	assert.True(t, back.Items[0].Settable)
}

func TestImportRejectsNameless(t *testing.T) {
	_, err := Import([]byte("items: []\n"))
	assert.Error(t, err)
}

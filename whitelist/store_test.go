package whitelist

import (
	"context"
	"corp-bot/model"
	"corp-bot/utils/database"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const activityDays = 30

type fakeMembers map[string]string

func (f fakeMembers) GetMemberByName(ctx context.Context, name string) (*model.Member, error) {
	canonical, ok := f[strings.ToLower(name)]
	if !ok {
		return nil, database.ErrMemberNotFound
	}
	return &model.Member{CharacterName: canonical}, nil
}

func newStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.InitStateDB(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	members := fakeMembers{
		"jane doe": "Jane Doe",
		"john roe": "John Roe",
		"alpha":    "Alpha",
	}
	return NewStore(NewSQLRepository(db), members, activityDays)
}

func listNames(t *testing.T, s *Store) []string {
	t.Helper()
	entries, err := s.List(context.Background())
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

func TestAdd(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	entry, err := s.Add(ctx, "jane doe", "vacation", 14)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", entry.Name)
	assert.Equal(t, 14, entry.ExpiryDays)

	_, err = s.Add(ctx, "JANE DOE", "", 3)
	assert.ErrorIs(t, err, ErrAlreadyWhitelisted)
	userErr, ok := model.AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe is already on the whitelist.", userErr.Msg)

	_, err = s.Add(ctx, "Nobody", "", 3)
	assert.ErrorIs(t, err, ErrUnknownMember)
	_, ok = model.AsUserError(err)
	assert.True(t, ok)

	entry, err = s.Add(ctx, "john roe", "", 0)
	require.NoError(t, err)
	assert.Equal(t, model.PermanentExpiry(activityDays), entry.ExpiryDays)
	assert.True(t, entry.IsPermanent(activityDays))

	assert.Equal(t, []string{"Jane Doe", "John Roe"}, listNames(t, s))
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Add(ctx, "Jane Doe", "", 5)
	require.NoError(t, err)
	require.NoError(t, s.Remove(ctx, "jane DOE"))
	assert.Empty(t, listNames(t, s))

	err = s.Remove(ctx, "Jane Doe")
	assert.ErrorIs(t, err, ErrNotWhitelisted)
	_, ok := model.AsUserError(err)
	assert.True(t, ok)
}

func TestDecayExample(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	mains := []string{"Jane Doe", "John Roe"}

	_, err := s.Add(ctx, "Jane Doe", "vacation", 14)
	require.NoError(t, err)

	exempt, err := s.Decay(ctx, mains)
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"Jane Doe": true}, exempt)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 13, entries[0].ExpiryDays)
	assert.Equal(t, "**Activity whitelist:**\n- Jane Doe (vacation): 13 days left", Render(entries, activityDays))

	for i := 1; i < 14; i++ {
		_, err = s.Decay(ctx, mains)
		require.NoError(t, err)
	}
	assert.Empty(t, listNames(t, s))

	// Counted down but not evicted yet: still exempt.
	exempt, err = s.Decay(ctx, mains)
	require.NoError(t, err)
	assert.True(t, exempt["Jane Doe"])
}

func TestDecayEviction(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	mains := []string{"Jane Doe"}

	_, err := s.Add(ctx, "Jane Doe", "", 1)
	require.NoError(t, err)

	// 1 counts down through 0 to -activityDays, then is evicted.
	for i := 0; i < activityDays+1; i++ {
		exempt, err := s.Decay(ctx, mains)
		require.NoError(t, err)
		assert.True(t, exempt["Jane Doe"])
	}
	count, err := s.repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	exempt, err := s.Decay(ctx, mains)
	require.NoError(t, err)
	assert.True(t, exempt["Jane Doe"])
	count, err = s.repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	exempt, err = s.Decay(ctx, mains)
	require.NoError(t, err)
	assert.Empty(t, exempt)
}

func TestDecayPermanent(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Add(ctx, "Alpha", "officer", 0)
	require.NoError(t, err)
	for i := 0; i < 3*activityDays; i++ {
		_, err := s.Decay(ctx, []string{"Alpha"})
		require.NoError(t, err)
	}
	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.PermanentExpiry(activityDays), entries[0].ExpiryDays)
	assert.Equal(t, "**Activity whitelist:**\n- Alpha (officer): permanent", Render(entries, activityDays))
}

func TestDecayMatchesExactName(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	_, err := s.Add(ctx, "Jane Doe", "", 5)
	require.NoError(t, err)

	exempt, err := s.Decay(ctx, []string{"jane doe", "Someone Else"})
	require.NoError(t, err)
	assert.Empty(t, exempt)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 5, entries[0].ExpiryDays)
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	seed := []model.WhitelistEntry{
		{Name: "Jane Doe", Description: "vacation", ExpiryDays: 10},
		{Name: " Alpha ", ExpiryDays: 0},
		{Name: "jane doe", ExpiryDays: 3},
		{Name: ""},
	}
	n, err := s.Seed(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Alpha", entries[0].Name)
	assert.True(t, entries[0].IsPermanent(activityDays))
	assert.Equal(t, 10, entries[1].ExpiryDays)

	n, err = s.Seed(ctx, []model.WhitelistEntry{{Name: "John Roe", ExpiryDays: 2}})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRender(t *testing.T) {
	assert.Equal(t, "The activity whitelist is empty.", Render(nil, activityDays))
	entries := []model.WhitelistEntry{{Name: "Jane Doe", ExpiryDays: 1}}
	assert.Equal(t, "**Activity whitelist:**\n- Jane Doe: 1 day left", Render(entries, activityDays))
}

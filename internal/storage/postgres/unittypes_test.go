package postgres_test

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Artemis21/polycalc-api/internal/game/unit"
	"github.com/Artemis21/polycalc-api/internal/storage/postgres"
	"github.com/Artemis21/polycalc-api/internal/testutil"
)

// uniqueID keeps test rows from colliding when TEST_DSN points at a shared
// database.
func uniqueID(prefix string) string {
	return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
}

func setupUnitTypeRepo(t *testing.T) *postgres.UnitTypeRepository {
	t.Helper()
	return postgres.NewUnitTypeRepository(testutil.NewPool(t))
}

func makeTestTemplate(id string) *unit.Template {
	return &unit.Template{
		ID:        id,
		Name:      "Test Warrior",
		Aliases:   []string{id + "_alias"},
		Health:    10,
		Attack:    2,
		Defence:   2,
		Range:     1,
		Abilities: []string{"dash"},
	}
}

// upsertCleaned upserts tmpl and removes the row again when the test ends.
func upsertCleaned(t *testing.T, repo *postgres.UnitTypeRepository, tmpl *unit.Template) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, tmpl))
	t.Cleanup(func() {
		_, _ = repo.Delete(ctx, tmpl.ID)
	})
}

func findTemplate(templates []*unit.Template, id string) *unit.Template {
	for _, tmpl := range templates {
		if tmpl.ID == id {
			return tmpl
		}
	}
	return nil
}

func TestUnitTypeRepository_UpsertAndListAll(t *testing.T) {
	repo := setupUnitTypeRepo(t)
	ctx := context.Background()

	tmpl := makeTestTemplate(uniqueID("ut"))
	upsertCleaned(t, repo, tmpl)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)

	stored := findTemplate(all, tmpl.ID)
	require.NotNil(t, stored, "upserted template missing from ListAll")
	assert.Equal(t, tmpl, stored)
}

func TestUnitTypeRepository_UpsertReplaces(t *testing.T) {
	repo := setupUnitTypeRepo(t)
	ctx := context.Background()

	tmpl := makeTestTemplate(uniqueID("ut"))
	upsertCleaned(t, repo, tmpl)

	tmpl.Name = "Renamed"
	tmpl.Health = 15
	tmpl.Hidden = true
	tmpl.Abilities = []string{"dash", "fortify"}
	require.NoError(t, repo.Upsert(ctx, tmpl))

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)

	stored := findTemplate(all, tmpl.ID)
	require.NotNil(t, stored)
	assert.Equal(t, "Renamed", stored.Name)
	assert.Equal(t, 15.0, stored.Health)
	assert.True(t, stored.Hidden)
	assert.Equal(t, []string{"dash", "fortify"}, stored.Abilities)
}

func TestUnitTypeRepository_ListAll_OrderedByID(t *testing.T) {
	repo := setupUnitTypeRepo(t)
	ctx := context.Background()

	base := uniqueID("ut")
	for _, suffix := range []string{"_b", "_a", "_c"} {
		upsertCleaned(t, repo, makeTestTemplate(base+suffix))
	}

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)

	assert.True(t, sort.SliceIsSorted(all, func(i, j int) bool {
		return all[i].ID < all[j].ID
	}), "ListAll must order by id")
}

func TestUnitTypeRepository_Delete(t *testing.T) {
	repo := setupUnitTypeRepo(t)
	ctx := context.Background()

	tmpl := makeTestTemplate(uniqueID("ut"))
	require.NoError(t, repo.Upsert(ctx, tmpl))

	removed, err := repo.Delete(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	removed, err = repo.Delete(ctx, tmpl.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
}

// TestUnitTypeRepository_Property_UpsertRoundTrip verifies that any valid
// template survives an upsert and read back unchanged.
func TestUnitTypeRepository_Property_UpsertRoundTrip(t *testing.T) {
	repo := setupUnitTypeRepo(t)
	ctx := context.Background()

	rapid.Check(t, func(rt *rapid.T) {
		tmpl := &unit.Template{
			ID:      uniqueID("prop"),
			Name:    rapid.StringMatching(`[A-Z][a-z]{2,12}`).Draw(rt, "name"),
			Hidden:  rapid.Bool().Draw(rt, "hidden"),
			Health:  float64(rapid.IntRange(1, 40).Draw(rt, "health")),
			Attack:  float64(rapid.IntRange(0, 5).Draw(rt, "attack")),
			Defence: float64(rapid.IntRange(0, 5).Draw(rt, "defence")),
			Range:   rapid.IntRange(1, 3).Draw(rt, "range"),
		}
		if rapid.Bool().Draw(rt, "hasAliases") {
			tmpl.Aliases = []string{tmpl.ID + "_a"}
		}
		if rapid.Bool().Draw(rt, "canConvert") {
			tmpl.Abilities = []string{unit.AbilityConvert}
		}

		require.NoError(t, repo.Upsert(ctx, tmpl))
		defer func() {
			_, _ = repo.Delete(ctx, tmpl.ID)
		}()

		all, err := repo.ListAll(ctx)
		require.NoError(t, err)

		stored := findTemplate(all, tmpl.ID)
		require.NotNil(t, stored)
		assert.Equal(t, tmpl, stored)
	})
}

package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Meet0105/repoza-sub001/internal/core/auth"
	"github.com/Meet0105/repoza-sub001/internal/core/config"
	"github.com/Meet0105/repoza-sub001/internal/core/plans"
	"github.com/Meet0105/repoza-sub001/internal/data/db"
	"github.com/Meet0105/repoza-sub001/internal/data/stores"
)

type staticCheck struct {
	name  string
	items []CheckItem
}

func (s staticCheck) Name() string { return s.name }

func (s staticCheck) Run(context.Context) Result {
	return Result{Name: s.name, Items: s.items}
}

func TestRunAll_SummaryAndFixable(t *testing.T) {
	checks := []Check{
		staticCheck{name: "a", items: []CheckItem{
			{Label: "one", Status: StatusPass},
			{Label: "two", Status: StatusWarn, Fixable: true},
		}},
		staticCheck{name: "b", items: []CheckItem{
			{Label: "three", Status: StatusFail},
			{Label: "four", Status: StatusPass, Fixable: true},
		}},
	}

	results := RunAll(context.Background(), checks)
	require.Len(t, results, 2)
	assert.Equal(t, "warn", results[0].Items[1].StatusStr)

	passed, warned, failed := Summary(results)
	assert.Equal(t, 2, passed)
	assert.Equal(t, 1, warned)
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, CountFixable(results))
}

func TestConfigCheck(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file warns", func(t *testing.T) {
		result := NewConfigCheck(filepath.Join(dir, "nope.yaml"), dir).Run(context.Background())
		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusWarn, result.Items[0].Status)
		assert.Equal(t, StatusPass, result.Items[1].Status)
	})

	t.Run("valid file passes", func(t *testing.T) {
		path := filepath.Join(dir, "ok.yaml")
		require.NoError(t, os.WriteFile(path, []byte("theme: gruvbox\nplan: pro\n"), 0o600))

		result := NewConfigCheck(path, dir).Run(context.Background())
		require.Len(t, result.Items, 2)
		assert.Equal(t, StatusPass, result.Items[0].Status)
		assert.Equal(t, path, result.Items[0].Detail)
		assert.Equal(t, StatusPass, result.Items[1].Status)
	})

	t.Run("field errors are itemized", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("theme: neon\nplan: gold\n"), 0o600))

		result := NewConfigCheck(path, dir).Run(context.Background())
		require.Len(t, result.Items, 3)

		labels := []string{result.Items[1].Label, result.Items[2].Label}
		assert.ElementsMatch(t, []string{"theme", "plan"}, labels)
		assert.Equal(t, StatusFail, result.Items[1].Status)
	})

	t.Run("directory fails", func(t *testing.T) {
		result := NewConfigCheck(dir, dir).Run(context.Background())
		require.Len(t, result.Items, 1)
		assert.Equal(t, StatusFail, result.Items[0].Status)
	})
}

func openTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(t.TempDir(), db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestDatabaseCheck(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	kv := stores.NewKVStore(database)

	require.NoError(t, kv.SetTTL(ctx, "github:cache:a", "x", time.Minute))
	require.NoError(t, kv.Set(ctx, "auth:github", "y"))

	check := NewDatabaseCheck(database.Conn(), kv, false)
	check.now = func() time.Time { return time.Now().Add(time.Hour) }

	result := check.Run(ctx)
	require.Len(t, result.Items, 3)
	assert.Equal(t, StatusPass, result.Items[0].Status, "integrity")
	assert.Equal(t, StatusPass, result.Items[1].Status, "schema")
	assert.Equal(t, "version 2", result.Items[1].Detail)

	cache := result.Items[2]
	assert.Equal(t, StatusWarn, cache.Status)
	assert.True(t, cache.Fixable)
	assert.Equal(t, "1 expired entries", cache.Detail)
}

func TestDatabaseCheck_SchemaBehind(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)

	_, err := database.Conn().ExecContext(ctx, "PRAGMA user_version = 1")
	require.NoError(t, err)

	result := NewDatabaseCheck(database.Conn(), nil, false).Run(ctx)
	require.Len(t, result.Items, 3)
	assert.Equal(t, StatusWarn, result.Items[1].Status)
	assert.Equal(t, "version 1, this build expects 2", result.Items[1].Detail)
}

func TestDatabaseCheck_Autofix(t *testing.T) {
	ctx := context.Background()
	database := openTestDB(t)
	kv := stores.NewKVStore(database)

	require.NoError(t, kv.SetTTL(ctx, "github:cache:a", "x", time.Nanosecond))
	time.Sleep(time.Millisecond)

	result := NewDatabaseCheck(database.Conn(), kv, true).Run(ctx)
	require.Len(t, result.Items, 3)
	assert.Equal(t, StatusPass, result.Items[2].Status)
	assert.Equal(t, "removed 1 expired entries", result.Items[2].Detail)

	has, err := kv.Has(ctx, "github:cache:a")
	require.NoError(t, err)
	assert.False(t, has)
}

type fakeTokens struct {
	tok auth.StoredToken
	ok  bool
}

func (f fakeTokens) Load(context.Context, string) (auth.StoredToken, bool, error) {
	return f.tok, f.ok, nil
}

func itemByLabel(t *testing.T, r Result, label string) CheckItem {
	t.Helper()
	for _, it := range r.Items {
		if it.Label == label {
			return it
		}
	}
	t.Fatalf("no item %q in %s", label, r.Name)
	return CheckItem{}
}

func TestCredentialsCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("nothing configured warns", func(t *testing.T) {
		cfg := config.DefaultConfig()
		result := NewCredentialsCheck(&cfg, fakeTokens{}).Run(ctx)

		require.Len(t, result.Items, 5)
		for _, it := range result.Items {
			assert.Equal(t, StatusWarn, it.Status, it.Label)
		}
		assert.Contains(t, itemByLabel(t, result, "oauth google").Detail, "REPOZA_GOOGLE_CLIENT_ID")
	})

	t.Run("configured passes", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.GitHub.Token = "ghp"
		cfg.AI.APIKey = "sk"
		cfg.Billing.APIKey = "pdl"
		cfg.Auth.Providers[config.ProviderGitHub] = config.ProviderConfig{ClientID: "id"}

		result := NewCredentialsCheck(&cfg, nil).Run(ctx)
		assert.Equal(t, StatusPass, itemByLabel(t, result, "github token").Status)
		assert.Equal(t, StatusPass, itemByLabel(t, result, "anthropic api key").Status)
		assert.Equal(t, StatusPass, itemByLabel(t, result, "oauth github").Status)
		assert.Equal(t, StatusWarn, itemByLabel(t, result, "oauth google").Status)
		assert.Equal(t, StatusPass, itemByLabel(t, result, "paddle api key").Status)
	})

	t.Run("signed-in token", func(t *testing.T) {
		cfg := config.DefaultConfig()
		result := NewCredentialsCheck(&cfg, fakeTokens{tok: auth.StoredToken{AccessToken: "t"}, ok: true}).Run(ctx)
		assert.Equal(t, "signed in via github", itemByLabel(t, result, "github token").Detail)
	})

	t.Run("expired sign-in", func(t *testing.T) {
		cfg := config.DefaultConfig()
		result := NewCredentialsCheck(&cfg, fakeTokens{tok: auth.StoredToken{AccessToken: "t"}}).Run(ctx)
		item := itemByLabel(t, result, "github token")
		assert.Equal(t, StatusWarn, item.Status)
		assert.Contains(t, item.Detail, "expired")
	})
}

type fixedCounter map[string]int

func (f fixedCounter) Today(_ context.Context, metric string) (int, error) { return f[metric], nil }

func (f fixedCounter) IncrementWithin(_ context.Context, metric string, _ int) (int, bool, error) {
	f[metric]++
	return f[metric], true, nil
}

func TestUsageCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("free tier", func(t *testing.T) {
		meter := plans.NewMeter(plans.TierFree, fixedCounter{plans.MetricAnalyses: 10})
		result := NewUsageCheck(meter).Run(ctx)

		require.Len(t, result.Items, 3)
		assert.Equal(t, "Free", result.Items[0].Detail)
		assert.Equal(t, StatusWarn, result.Items[1].Status)
		assert.Contains(t, result.Items[1].Detail, "resets")
		assert.Contains(t, result.Items[2].Detail, "not included")
	})

	t.Run("pro tier", func(t *testing.T) {
		meter := plans.NewMeter(plans.TierPro, fixedCounter{plans.MetricAnalyses: 20})
		result := NewUsageCheck(meter).Run(ctx)

		require.Len(t, result.Items, 3)
		assert.Equal(t, "180 remaining", result.Items[1].Detail)
		assert.Equal(t, "50 remaining", result.Items[2].Detail)
	})

	t.Run("team tier", func(t *testing.T) {
		meter := plans.NewMeter(plans.TierTeam, fixedCounter{})
		result := NewUsageCheck(meter).Run(ctx)
		assert.Equal(t, "unlimited", result.Items[1].Detail)
	})
}

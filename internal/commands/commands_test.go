package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/Meet0105/repoza-sub001/internal/core/auth"
	"github.com/Meet0105/repoza-sub001/internal/core/config"
	"github.com/Meet0105/repoza-sub001/internal/core/doctor"
	"github.com/Meet0105/repoza-sub001/internal/core/github"
	"github.com/Meet0105/repoza-sub001/internal/core/plans"
	"github.com/Meet0105/repoza-sub001/internal/data/db"
	"github.com/Meet0105/repoza-sub001/internal/printer"
	"github.com/Meet0105/repoza-sub001/internal/repoza"
	"github.com/Meet0105/repoza-sub001/pkg/executil"
)

// fakeGitHub serves a repository with no README and treeSize files.
func fakeGitHub(t *testing.T, treeSize int) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widget", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `{"full_name":"acme/widget","description":"Widgets","default_branch":"main","stargazers_count":1200}`)
	})
	mux.HandleFunc("/repos/acme/widget/readme", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})
	mux.HandleFunc("/repos/acme/widget/git/trees/main", func(w http.ResponseWriter, _ *http.Request) {
		entries := make([]map[string]any, treeSize)
		for i := range entries {
			entries[i] = map[string]any{"path": fmt.Sprintf("pkg/file%03d.go", i), "type": "blob"}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"tree": entries, "truncated": false})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestApp(t *testing.T, apiURL string, tier plans.Tier) *repoza.App {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.DataDir = t.TempDir()
	cfg.Plan = string(tier)
	cfg.GitHub.APIURL = apiURL

	database, err := db.Open(cfg.DataDir, db.DefaultOpenOptions())
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	return repoza.NewApp(context.Background(), &cfg, database, repoza.BuildInfo{})
}

// runRoot runs args against a root command with the given subcommands and
// returns stdout, stderr-style printer output and the run error.
func runRoot(t *testing.T, register func(*cli.Command) *cli.Command, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	root := &cli.Command{
		Name:           "repoza",
		Writer:         &stdout,
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
	root = register(root)

	ctx := printer.NewContext(context.Background(), printer.New(&stderr))
	err := root.Run(ctx, append([]string{"repoza"}, args...))
	return stdout.String(), stderr.String(), err
}

func exitCode(err error) int {
	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return 0
}

func TestAnalyzeCmd_JSON(t *testing.T) {
	srv := fakeGitHub(t, 250)
	app := newTestApp(t, srv.URL, plans.TierFree)

	stdout, _, err := runRoot(t, NewAnalyzeCmd(&Flags{}, app).Register, "analyze", "--format", "json", "acme/widget")
	require.NoError(t, err)

	var res analyzeResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))

	assert.True(t, res.Success)
	assert.Equal(t, "analyzed acme/widget", res.Detail)
	require.NotNil(t, res.Analysis)
	assert.Equal(t, "acme/widget", res.Analysis.Repository.FullName)
	assert.Nil(t, res.Analysis.Readme)
	assert.Nil(t, res.Summary)

	require.NotNil(t, res.Analysis.Tree)
	assert.Len(t, res.Analysis.Tree.Entries, 200, "free plan caps the tree")
	assert.Contains(t, res.Analysis.Warnings, "repository has no README")
	assert.Contains(t, res.Analysis.Warnings, "tree limited to 200 entries on the free plan")
}

func TestAnalyzeCmd_NotFound(t *testing.T) {
	srv := fakeGitHub(t, 0)
	app := newTestApp(t, srv.URL, plans.TierFree)

	stdout, _, err := runRoot(t, NewAnalyzeCmd(&Flags{}, app).Register, "analyze", "--format", "json", "acme/missing")
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))

	var res analyzeResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.False(t, res.Success)
	assert.Equal(t, "repository not found", res.Detail)
	assert.Nil(t, res.Analysis)
}

func TestAnalyzeCmd_QuotaExceeded(t *testing.T) {
	srv := fakeGitHub(t, 1)
	app := newTestApp(t, srv.URL, plans.TierFree)

	for range 10 {
		_, err := app.Meter.Use(context.Background(), plans.MetricAnalyses)
		require.NoError(t, err)
	}

	_, stderr, err := runRoot(t, NewAnalyzeCmd(&Flags{}, app).Register, "analyze", "acme/widget")
	require.Error(t, err)
	assert.Contains(t, stderr, "free plan allows 10 analyses per day")
}

func TestAnalyzeCmd_SummarizeWithoutKeyWarns(t *testing.T) {
	srv := fakeGitHub(t, 1)
	app := newTestApp(t, srv.URL, plans.TierPro)

	stdout, _, err := runRoot(t, NewAnalyzeCmd(&Flags{}, app).Register, "analyze", "--format", "json", "--summarize", "acme/widget")
	require.NoError(t, err)

	var res analyzeResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.True(t, res.Success)
	assert.Nil(t, res.Summary)
	assert.Contains(t, res.Analysis.Warnings, "summary: no AI key configured")
}

func TestAnalyzeCmd_InvalidRef(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:1", plans.TierFree)

	_, _, err := runRoot(t, NewAnalyzeCmd(&Flags{}, app).Register, "analyze", "not a repo")
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))
}

func TestDescribeGitHubError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("fetch: %w", github.ErrNotFound), "repository not found"},
		{github.ErrRateLimited, "GitHub rate limit reached; set GITHUB_TOKEN or run 'repoza signin'"},
		{github.ErrUnauthorized, "GitHub rejected the token"},
		{errors.New("dial tcp: refused"), "could not reach server: dial tcp: refused"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, describeGitHubError(tt.err))
	}
}

func TestPlansCmd_JSON(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:1", plans.TierPro)
	_, err := app.Meter.Use(context.Background(), plans.MetricAnalyses)
	require.NoError(t, err)

	stdout, _, err := runRoot(t, NewPlansCmd(&Flags{}, app).Register, "plans", "--format", "json")
	require.NoError(t, err)

	var out struct {
		Current plans.Tier     `json:"current"`
		Usage   usageJSON      `json:"usage"`
		Plans   []plans.Limits `json:"plans"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, plans.TierPro, out.Current)
	assert.Equal(t, 199, out.Usage.AnalysesRemaining)
	assert.Equal(t, 50, out.Usage.SummariesRemaining)
	assert.Len(t, out.Plans, 3)
}

func TestPlansCmd_Text(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:1", plans.TierTeam)

	stdout, _, err := runRoot(t, NewPlansCmd(&Flags{}, app).Register, "plans")
	require.NoError(t, err)

	assert.Contains(t, stdout, "PLAN")
	assert.Contains(t, stdout, "$29/mo")
	assert.Contains(t, stdout, "*  Team")
	assert.Contains(t, stdout, "Today: unlimited analyses and unlimited summaries remaining")
}

func TestConfigValidateCmd(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid", func(t *testing.T) {
		path := filepath.Join(dir, "ok.yaml")
		require.NoError(t, os.WriteFile(path, []byte("theme: catppuccin\n"), 0o600))

		flags := &Flags{ConfigPath: path, DataDir: dir}
		_, stderr, err := runRoot(t, NewConfigValidateCmd(flags).Register, "config", "validate")
		require.NoError(t, err)
		assert.Contains(t, stderr, "Configuration is valid")
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("notifications:\n  max_visible: -1\n  default_duration: -1s\n"), 0o600))

		flags := &Flags{ConfigPath: path, DataDir: dir}
		stdout, _, err := runRoot(t, NewConfigValidateCmd(flags).Register, "config", "validate", "--format", "json")
		require.Error(t, err)

		var out struct {
			Valid  bool              `json:"valid"`
			Errors []validationError `json:"errors"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &out))
		assert.False(t, out.Valid)

		fields := make([]string, len(out.Errors))
		for i, e := range out.Errors {
			fields[i] = e.Field
		}
		assert.ElementsMatch(t, []string{"notifications.default_duration", "notifications.max_visible"}, fields)
	})

	t.Run("unparseable", func(t *testing.T) {
		path := filepath.Join(dir, "broken.yaml")
		require.NoError(t, os.WriteFile(path, []byte("theme: [\n"), 0o600))

		errs := validateConfigFile(path, dir)
		require.Len(t, errs, 1)
		assert.Empty(t, errs[0].Field)
		assert.Contains(t, errs[0].Message, "parse config file")
	})
}

func TestDoctorCmd_InvalidConfigReportsFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "theme: neon\nnotifications:\n  max_visible: 0\n  sticky: [fatal]\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	// The root Before hook leaves the app empty when the config does not load.
	flags := &Flags{ConfigPath: path, DataDir: dir}
	stdout, _, err := runRoot(t, NewDoctorCmd(flags, &repoza.App{}).Register, "doctor", "--format", "json")
	require.NoError(t, err)

	var out struct {
		Healthy bool            `json:"healthy"`
		Checks  []doctor.Result `json:"checks"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.False(t, out.Healthy)

	names := make([]string, len(out.Checks))
	for i, r := range out.Checks {
		names[i] = r.Name
	}
	assert.Equal(t, []string{"Configuration", "Tools"}, names)

	failed := map[string]string{}
	for _, item := range out.Checks[0].Items {
		if item.StatusStr == "fail" {
			failed[item.Label] = item.Detail
		}
	}
	assert.Len(t, failed, 3)
	assert.Contains(t, failed, "theme")
	assert.Contains(t, failed, "notifications.max_visible")
	assert.Contains(t, failed["notifications.sticky[0]"], "fatal")
}

func TestSignInCmd_NoProviders(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:1", plans.TierFree)
	cmd := NewSignInCmd(&Flags{}, app)
	cmd.exec = &executil.RecordingExecutor{}

	_, _, err := runRoot(t, cmd.Register, "signin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sign-in provider configured")
	assert.Empty(t, cmd.exec.(*executil.RecordingExecutor).Commands)
}

func TestSignInCmd_UnconfiguredProvider(t *testing.T) {
	app := newTestApp(t, "http://127.0.0.1:1", plans.TierFree)
	cmd := NewSignInCmd(&Flags{}, app)
	cmd.exec = &executil.RecordingExecutor{}

	_, _, err := runRoot(t, cmd.Register, "signin", "--provider", "google")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPOZA_GOOGLE_CLIENT_ID")
}

func TestDescribeSignInError(t *testing.T) {
	assert.Equal(t, "github sign-in was cancelled", describeSignInError("github", auth.ErrDenied))
	assert.Equal(t, "timed out waiting for the sign-in redirect", describeSignInError("github", context.DeadlineExceeded))
	assert.Contains(t, describeSignInError("github", auth.ErrStateMismatch), "did not match")
}

package doctor

import (
	"context"
	"strings"

	"github.com/Meet0105/repoza-sub001/internal/core/auth"
	"github.com/Meet0105/repoza-sub001/internal/core/config"
)

// TokenLoader reads tokens saved by sign-in.
type TokenLoader interface {
	Load(ctx context.Context, provider string) (auth.StoredToken, bool, error)
}

// CredentialsCheck reports which integrations have credentials. Missing
// credentials only disable features, so they never fail the check.
type CredentialsCheck struct {
	cfg    *config.Config
	tokens TokenLoader
}

// NewCredentialsCheck creates a credentials check.
func NewCredentialsCheck(cfg *config.Config, tokens TokenLoader) *CredentialsCheck {
	return &CredentialsCheck{cfg: cfg, tokens: tokens}
}

func (c *CredentialsCheck) Name() string {
	return "Credentials"
}

func (c *CredentialsCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}
	result.Items = append(result.Items, c.githubItem(ctx))

	if c.cfg.AI.APIKey != "" {
		result.Items = append(result.Items, CheckItem{Label: "anthropic api key", Status: StatusPass, Detail: "configured"})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "anthropic api key",
			Status: StatusWarn,
			Detail: "not set, AI summaries disabled (set ANTHROPIC_API_KEY)",
		})
	}

	for _, name := range []string{config.ProviderGitHub, config.ProviderGoogle} {
		label := "oauth " + name
		if c.cfg.Auth.Providers[name].ClientID != "" {
			result.Items = append(result.Items, CheckItem{Label: label, Status: StatusPass, Detail: "client configured"})
			continue
		}
		result.Items = append(result.Items, CheckItem{
			Label:  label,
			Status: StatusWarn,
			Detail: "sign-in disabled (set REPOZA_" + strings.ToUpper(name) + "_CLIENT_ID)",
		})
	}

	if c.cfg.Billing.APIKey != "" {
		result.Items = append(result.Items, CheckItem{Label: "paddle api key", Status: StatusPass, Detail: "configured"})
	} else {
		result.Items = append(result.Items, CheckItem{
			Label:  "paddle api key",
			Status: StatusWarn,
			Detail: "not set, only needed by provision-products",
		})
	}

	return result
}

func (c *CredentialsCheck) githubItem(ctx context.Context) CheckItem {
	if c.cfg.GitHub.Token != "" {
		return CheckItem{Label: "github token", Status: StatusPass, Detail: "configured"}
	}

	if c.tokens != nil {
		tok, ok, err := c.tokens.Load(ctx, config.ProviderGitHub)
		switch {
		case err != nil:
			return CheckItem{Label: "github token", Status: StatusFail, Detail: err.Error()}
		case ok:
			return CheckItem{Label: "github token", Status: StatusPass, Detail: "signed in via github"}
		case tok.AccessToken != "":
			return CheckItem{Label: "github token", Status: StatusWarn, Detail: "saved sign-in expired, run 'repoza signin'"}
		}
	}

	return CheckItem{
		Label:  "github token",
		Status: StatusWarn,
		Detail: "not set, unauthenticated requests are limited to 60 per hour",
	}
}

package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/Meet0105/repoza-sub001/internal/core/auth"
	"github.com/Meet0105/repoza-sub001/internal/core/styles"
	"github.com/Meet0105/repoza-sub001/internal/printer"
	"github.com/Meet0105/repoza-sub001/internal/repoza"
	"github.com/Meet0105/repoza-sub001/pkg/executil"
)

const signInTimeout = 3 * time.Minute

type SignInCmd struct {
	flags    *Flags
	app      *repoza.App
	exec     executil.Executor
	provider string
	listen   bool
	browser  bool
}

// NewSignInCmd creates the signin and signout commands.
func NewSignInCmd(flags *Flags, app *repoza.App) *SignInCmd {
	return &SignInCmd{flags: flags, app: app, exec: &executil.RealExecutor{}}
}

func (cmd *SignInCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands,
		&cli.Command{
			Name:      "signin",
			Usage:     "Sign in with GitHub or Google",
			UsageText: "repoza signin [options]",
			Description: `Opens the provider's consent page and waits for the redirect on the
configured callback URL. A GitHub sign-in is used for API requests when no
GITHUB_TOKEN is set.

With --listen=false the authorization code is pasted instead.`,
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "provider",
					Aliases:     []string{"p"},
					Usage:       "identity provider (github, google); prompts when empty",
					Destination: &cmd.provider,
				},
				&cli.BoolFlag{
					Name:        "listen",
					Usage:       "receive the redirect on the local callback server",
					Value:       true,
					Destination: &cmd.listen,
				},
				&cli.BoolFlag{
					Name:        "browser",
					Usage:       "open the consent page in the default browser",
					Value:       true,
					Destination: &cmd.browser,
				},
			},
			Action: cmd.signIn,
		},
		&cli.Command{
			Name:      "signout",
			Usage:     "Forget a saved sign-in",
			UsageText: "repoza signout [--provider name]",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:        "provider",
					Aliases:     []string{"p"},
					Usage:       "identity provider (github, google)",
					Value:       "github",
					Destination: &cmd.provider,
				},
			},
			Action: cmd.signOut,
		},
	)
	return app
}

func (cmd *SignInCmd) signIn(ctx context.Context, _ *cli.Command) error {
	p := printer.Ctx(ctx)

	provider, err := cmd.chooseProvider()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		return cli.Exit(err.Error(), 1)
	}

	authURL, state, err := cmd.app.SignIn.AuthURL(provider)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	opened := false
	if cmd.browser {
		if err := executil.OpenURL(ctx, cmd.exec, authURL); err != nil {
			log.Debug().Err(err).Msg("open browser")
		} else {
			opened = true
		}
	}
	if opened {
		p.Infof("Opened %s sign-in in your browser", provider)
	} else {
		p.Infof("Open this URL to sign in with %s:", provider)
		p.Printf("  %s", authURL)
	}

	ctx, cancel := context.WithTimeout(ctx, signInTimeout)
	defer cancel()

	res, err := cmd.receive(ctx, provider, state)
	if err != nil {
		return cli.Exit(describeSignInError(provider, err), 1)
	}

	if err := cmd.app.Tokens.Save(ctx, provider, res.Token); err != nil {
		return fmt.Errorf("save token: %w", err)
	}

	p.Successf("Signed in with %s", provider)
	return nil
}

func (cmd *SignInCmd) receive(ctx context.Context, provider, state string) (auth.Result, error) {
	if cmd.listen {
		return cmd.app.SignIn.Listen(ctx, provider, state)
	}

	var code string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Authorization code").
				Description("Paste the redirect URL, or just its code parameter").
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("code is required")
					}
					return nil
				}).
				Value(&code),
		),
	).WithTheme(styles.FormTheme()).RunWithContext(ctx)
	if err != nil {
		return auth.Result{}, err
	}

	code, err = auth.CodeFromPaste(code, state)
	if err != nil {
		return auth.Result{}, err
	}

	tok, err := cmd.app.SignIn.Exchange(ctx, provider, code)
	if err != nil {
		return auth.Result{}, err
	}
	return auth.Result{Provider: provider, Token: tok}, nil
}

func (cmd *SignInCmd) chooseProvider() (string, error) {
	// An explicit provider is checked by AuthURL, which names the missing
	// environment variable.
	if cmd.provider != "" {
		return cmd.provider, nil
	}

	available := cmd.app.SignIn.Providers()

	switch len(available) {
	case 0:
		return "", errors.New("no sign-in provider configured (set REPOZA_GITHUB_CLIENT_ID or REPOZA_GOOGLE_CLIENT_ID)")
	case 1:
		return available[0], nil
	}

	var provider string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Sign in with").
				Options(huh.NewOptions(available...)...).
				Value(&provider),
		),
	).WithTheme(styles.FormTheme()).Run()
	return provider, err
}

func (cmd *SignInCmd) signOut(ctx context.Context, _ *cli.Command) error {
	if err := cmd.app.Tokens.Forget(ctx, cmd.provider); err != nil {
		return fmt.Errorf("forget %s token: %w", cmd.provider, err)
	}
	printer.Ctx(ctx).Successf("Signed out of %s", cmd.provider)
	return nil
}

func describeSignInError(provider string, err error) string {
	switch {
	case errors.Is(err, auth.ErrDenied):
		return provider + " sign-in was cancelled"
	case errors.Is(err, auth.ErrStateMismatch):
		return "sign-in response did not match this request; try again"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out waiting for the sign-in redirect"
	case errors.Is(err, huh.ErrUserAborted):
		return "sign-in aborted"
	default:
		return err.Error()
	}
}

package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"thoreinstein.com/tug/pkg/config"
	tugerrors "thoreinstein.com/tug/pkg/errors"
	"thoreinstein.com/tug/pkg/github"
	"thoreinstein.com/tug/pkg/host"
	"thoreinstein.com/tug/pkg/ui"
)

var authHostname string

// Indirections replaced by tests.
var (
	newTokenStore = github.NewTokenStore
	deviceAuth    = github.DeviceAuth
)

// authCmd is the parent command for credential management.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Commands related to authentication",
}

var authAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Interactively configure authentication",
	Long: `Save an access token for the Git host of the current repository.

When github.client_id is configured, the token can be created with the OAuth
device flow. Otherwise paste an existing personal access token with the
'repo' scope. Tokens are stored in the system keychain when available.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		domain, err := authDomain()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		return runAuthAdd(cmd.Context(), cfg, newTokenStore(), domain,
			ui.NewPrompter(cmd.InOrStdin(), out, ui.WithContext(cmd.Context())), ui.NewPrinter(out), out)
	},
}

var authDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete authentication token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		domain, err := authDomain()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		return runAuthDelete(newTokenStore(), domain, ui.NewPrompter(cmd.InOrStdin(), out, ui.WithContext(cmd.Context())), ui.NewPrinter(out))
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authAddCmd)
	authCmd.AddCommand(authDeleteCmd)

	authCmd.PersistentFlags().StringVar(&authHostname, "hostname", "", "Git host domain (defaults to the host of the origin remote)")
}

// authDomain returns --hostname, or the domain of the origin remote.
func authDomain() (string, error) {
	if authHostname != "" {
		return authHostname, nil
	}
	rc, err := newRepoContext()
	if err != nil {
		return "", err
	}
	return rc.Remote.Domain, nil
}

func runAuthAdd(ctx context.Context, cfg *config.Config, store github.TokenStore, domain string, prompter *ui.Prompter, out *ui.Printer, w io.Writer) error {
	existing, err := store.Get(domain)
	if err != nil {
		return err
	}
	if existing != nil && existing.AccessToken != "" {
		out.Println("You already have an authentication token for the current Git host.")
		out.Println("If you want to create a new token, you must first delete the existing token with `tug auth delete`.")
		return nil
	}

	token, err := readToken(ctx, cfg, domain, prompter, out, w)
	if err != nil {
		return err
	}
	if token == "" {
		return tugerrors.NewAuthError(domain, "no token was given")
	}

	if err := store.Set(domain, &oauth2.Token{AccessToken: token, TokenType: "bearer"}); err != nil {
		return err
	}
	out.Success("This token has been saved. You're ready to go!")
	return nil
}

// readToken gets a token through the device flow when it is available and
// chosen, or asks for an existing one.
func readToken(ctx context.Context, cfg *config.Config, domain string, prompter *ui.Prompter, out *ui.Printer, w io.Writer) (string, error) {
	if cfg.GitHub.ClientID != "" && cfg.Host.Platform == string(host.PlatformGitHub) {
		useDeviceFlow, err := prompter.Confirm("Automatically create a token (with OAuth device flow)", true)
		if err != nil {
			return "", err
		}
		if useDeviceFlow {
			token, err := deviceAuth(ctx, github.OAuthConfig{
				ClientID: cfg.GitHub.ClientID,
				HostURL:  "https://" + domain,
			}, w)
			if err != nil {
				return "", err
			}
			return token.Token, nil
		}
	}

	out.Println("You must have an existing personal access token, for which the `repo` scope has been granted.")
	return prompter.Password("Type your access token:")
}

func runAuthDelete(store github.TokenStore, domain string, prompter *ui.Prompter, out *ui.Printer) error {
	existing, err := store.Get(domain)
	if err != nil {
		return err
	}
	if existing == nil {
		out.Error("No authentication token exists for the current Git host: %s", domain)
		return nil
	}

	out.Warning("You are about to delete the authentication token linked to %s", domain)
	ok, err := prompter.Confirm("Continue", false)
	if err != nil {
		return err
	}
	if !ok {
		out.Println("All right, no authentication token has been deleted.")
		return nil
	}

	if err := store.Delete(domain); err != nil {
		return err
	}
	out.Success("The authentication token has been deleted.")
	return nil
}

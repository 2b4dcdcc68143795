package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vietddude/studyclient/internal/core/domain"
)

const passwordHint = "password (defaults to $STUDYCLIENT_PASSWORD)"

var (
	password    string
	regEmail    string
	regPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login [username]",
	Short: "Log in and store the session",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Client.Logout(cmd.Context()); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged in user",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var registerCmd = &cobra.Command{
	Use:   "register [username]",
	Short: "Create an account and log in",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegister,
}

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manage learning preferences",
}

var prefsSetCmd = &cobra.Command{
	Use:   "set key=value...",
	Short: "Update learning preferences",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPrefsSet,
}

func init() {
	loginCmd.Flags().StringVarP(&password, "password", "p", "", passwordHint)
	registerCmd.Flags().StringVar(&regEmail, "email", "", "email address")
	registerCmd.Flags().StringVarP(&regPassword, "password", "p", "", passwordHint)

	prefsCmd.AddCommand(prefsSetCmd)
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, registerCmd, prefsCmd)
}

func passwordOrEnv(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv("STUDYCLIENT_PASSWORD")
}

func runLogin(cmd *cobra.Command, args []string) error {
	s, err := app.Client.Login(cmd.Context(), args[0], passwordOrEnv(password))
	if err != nil {
		return err
	}
	if s.Source == domain.ProvenanceSynthetic {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (offline development session)\n", s.Username)
		return nil
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", s.Username)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	res, err := app.Client.CurrentUser(cmd.Context())
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd, res.Value)
	}
	u := res.Value
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", u.Username, u.Email)
	notice(cmd, res.Provenance)
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	u, err := app.Client.Register(cmd.Context(), domain.Registration{
		Username: args[0],
		Email:    regEmail,
		Password: passwordOrEnv(regPassword),
	})
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s\n", u.Username)
	return nil
}

func runPrefsSet(cmd *cobra.Command, args []string) error {
	prefs, err := parsePreferences(args)
	if err != nil {
		return err
	}
	u, err := app.Client.UpdatePreferences(cmd.Context(), prefs)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(cmd, u.Preferences)
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Updated %d preference(s) for %s\n", len(prefs), u.Username)
	return nil
}

// parsePreferences reads key=value pairs. Numbers and booleans keep their type.
func parsePreferences(args []string) (domain.Preferences, error) {
	prefs := domain.Preferences{}
	for _, arg := range args {
		key, val, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid preference %q, expected key=value", arg)
		}
		key = strings.TrimSpace(key)
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			prefs[key] = f
		} else if b, err := strconv.ParseBool(val); err == nil {
			prefs[key] = b
		} else {
			prefs[key] = val
		}
	}
	return prefs, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/todocal/internal/service"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Long: `Create an account.

Prompts for any of --username, --email and --password that are not given.`,
	Args: cobra.NoArgs,
	RunE: runRegister,
}

var registerInput service.RegisterInput

func init() {
	registerCmd.Flags().StringVar(&registerInput.Username, "username", "", "account name (3-50 characters)")
	registerCmd.Flags().StringVar(&registerInput.Email, "email", "", "email address")
	registerCmd.Flags().StringVar(&registerInput.Password, "password", "", "password (at least 6 characters)")
}

func runRegister(cmd *cobra.Command, _ []string) error {
	in := registerInput
	if form := registrationForm(&in); form != nil {
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				return nil
			}
			return err
		}
	}

	return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
		ctx, cancel := context.WithTimeout(ctx, commandTimeout)
		defer cancel()

		session, err := a.users.Register(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registered %s <%s>\n", session.Username, session.Email)
		fmt.Fprintf(cmd.OutOrStdout(), "token: %s\n", session.Token)
		return nil
	})
}

// registrationForm asks for the fields still missing from in, or returns
// nil when everything was given as flags.
func registrationForm(in *service.RegisterInput) *huh.Form {
	var fields []huh.Field
	if in.Username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(&in.Username).
			Validate(validateLength("Username", 3, 50)))
	}
	if in.Email == "" {
		fields = append(fields, huh.NewInput().
			Title("Email").
			Placeholder("you@example.com").
			Value(&in.Email).
			Validate(validateLength("Email", 3, 254)))
	}
	if in.Password == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&in.Password).
			Validate(validateLength("Password", 6, 128)))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...))
}

func validateLength(field string, minLen, maxLen int) func(string) error {
	return func(s string) error {
		n := len([]rune(strings.TrimSpace(s)))
		switch {
		case n == 0:
			return fmt.Errorf("%s is required", field)
		case n < minLen:
			return fmt.Errorf("%s must be at least %d characters", field, minLen)
		case n > maxLen:
			return fmt.Errorf("%s must be at most %d characters", field, maxLen)
		}
		return nil
	}
}

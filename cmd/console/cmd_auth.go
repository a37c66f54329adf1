package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"haulage/internal/domain"
	"haulage/internal/dto"
	"haulage/internal/visibility"
)

func newLoginCmd(a *app) *cobra.Command {
	var req dto.LoginRequest
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.gatewayFor(domain.RoleUnknown).Login(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := a.store.Save(cmd.Context(), resp.Token, resp.User); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", resp.User.Name, resp.User.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Email, "email", "", "account email")
	cmd.Flags().StringVar(&req.Password, "password", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newSignupCmd(a *app) *cobra.Command {
	var req dto.SignupRequest
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a customer account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.gatewayFor(domain.RoleUnknown).Signup(cmd.Context(), req)
			if err != nil {
				return err
			}
			if err := a.store.Save(cmd.Context(), resp.Token, resp.User); err != nil {
				return fmt.Errorf("saving session: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s\n", resp.User.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&req.Name, "name", "", "full name")
	cmd.Flags().StringVar(&req.Email, "email", "", "email")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&req.Password, "password", "", "password, at least 8 characters")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.principal(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), p)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "user:    %s\n", p.UserID)
			if p.Name != "" {
				fmt.Fprintf(out, "name:    %s\n", p.Name)
			}
			fmt.Fprintf(out, "role:    %s\n", p.Role)
			if p.BranchID != "" {
				fmt.Fprintf(out, "branch:  %s\n", p.BranchID)
			}
			if !p.ExpiresAt.IsZero() {
				fmt.Fprintf(out, "expires: %s\n", p.ExpiresAt.Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
}

func newSectionsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sections",
		Short: "List the menu sections open to the signed-in role",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.principal(cmd.Context())
			if err != nil {
				return err
			}
			sections := visibility.SortedSections(p.Role)
			if a.jsonOutput {
				return printJSON(cmd.OutOrStdout(), sections)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(sections, "\n"))
			return nil
		},
	}
}

// newSessionCmd edits raw session entries, for switching API users while
// debugging.
func newSessionCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or edit the stored session",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Overwrite one session entry (jwt_token, userId or user)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store.Put(cmd.Context(), args[0], args[1])
		},
	})
	return cmd
}

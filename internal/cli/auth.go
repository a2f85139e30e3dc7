// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"

	"github.com/jeranaias/docmind-tui/internal/identity"
)

// AuthCmd groups the local account commands.
type AuthCmd struct {
	Signup AuthSignupCmd `cmd:"" help:"Create an account and sign in."`
	Login  AuthLoginCmd  `cmd:"" help:"Sign in."`
	Logout AuthLogoutCmd `cmd:"" help:"Sign out."`
	Whoami AuthWhoamiCmd `cmd:"" help:"Show the signed-in account."`
	TOTP   AuthTOTPCmd   `cmd:"" name:"totp" help:"Manage one-time codes."`
}

// =============================================================================
// SIGN UP / IN / OUT
// =============================================================================

// AuthSignupCmd creates an account. The password is prompted twice.
type AuthSignupCmd struct {
	Email string `arg:"" help:"Account email."`
	Name  string `help:"Display name."`
}

func (c *AuthSignupCmd) Run(deps *Dependencies) error {
	p := deps.prompter()
	password, err := p.Secret("Password: ")
	if err != nil {
		return err
	}
	confirm, err := p.Secret("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return ErrPasswordMismatch
	}

	id, err := deps.Accounts.SignUp(deps.Ctx, c.Email, password, c.Name)
	if err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Signed in as %s\n", id.Name())
	return nil
}

// AuthLoginCmd signs in, prompting for a one-time code when the account
// has one enabled.
type AuthLoginCmd struct {
	Email string `arg:"" help:"Account email."`
	Code  string `help:"One-time code, if enabled."`
}

func (c *AuthLoginCmd) Run(deps *Dependencies) error {
	p := deps.prompter()
	password, err := p.Secret("Password: ")
	if err != nil {
		return err
	}

	id, err := deps.Accounts.SignIn(deps.Ctx, c.Email, password, c.Code)
	if errors.Is(err, identity.ErrTOTPRequired) {
		code, perr := p.Line("One-time code: ")
		if perr != nil {
			return perr
		}
		id, err = deps.Accounts.SignIn(deps.Ctx, c.Email, password, code)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(deps.Stdout, "Signed in as %s\n", id.Name())
	return nil
}

// AuthLogoutCmd forgets the saved session.
type AuthLogoutCmd struct{}

func (c *AuthLogoutCmd) Run(deps *Dependencies) error {
	if err := deps.Accounts.SignOut(); err != nil {
		return err
	}
	fmt.Fprintln(deps.Stdout, "Signed out.")
	return nil
}

// AuthWhoamiCmd prints the signed-in account.
type AuthWhoamiCmd struct{}

func (c *AuthWhoamiCmd) Run(deps *Dependencies) error {
	id := deps.Accounts.Current()
	if id == nil {
		fmt.Fprintln(deps.Stdout, "Not signed in.")
		return nil
	}
	fmt.Fprintf(deps.Stdout, "%s <%s>\n", id.Name(), id.Email)
	if id.TOTPEnabled {
		fmt.Fprintln(deps.Stdout, "One-time codes: enabled")
	} else {
		fmt.Fprintln(deps.Stdout, "One-time codes: disabled")
	}
	return nil
}

// =============================================================================
// TOTP
// =============================================================================

// AuthTOTPCmd enables or disables one-time codes for the signed-in account.
type AuthTOTPCmd struct {
	Enable  TOTPEnableCmd  `cmd:"" help:"Enable one-time codes."`
	Disable TOTPDisableCmd `cmd:"" help:"Disable one-time codes."`
}

// TOTPEnableCmd shows a new secret and stores it once a code from it is
// confirmed.
type TOTPEnableCmd struct{}

func (c *TOTPEnableCmd) Run(deps *Dependencies) error {
	key, err := deps.Accounts.GenerateTOTP()
	if err != nil {
		return err
	}
	fmt.Fprintln(deps.Stdout, "Add this account to your authenticator app:")
	fmt.Fprintf(deps.Stdout, "  Secret: %s\n", key.Secret())
	fmt.Fprintf(deps.Stdout, "  URI:    %s\n", key.URL())

	code, err := deps.prompter().Line("Code from the app: ")
	if err != nil {
		return err
	}
	if err := deps.Accounts.EnableTOTP(deps.Ctx, key.Secret(), code); err != nil {
		return err
	}
	fmt.Fprintln(deps.Stdout, "One-time codes enabled.")
	return nil
}

// TOTPDisableCmd removes one-time codes after re-checking the password.
type TOTPDisableCmd struct{}

func (c *TOTPDisableCmd) Run(deps *Dependencies) error {
	password, err := deps.prompter().Secret("Password: ")
	if err != nil {
		return err
	}
	if err := deps.Accounts.DisableTOTP(deps.Ctx, password); err != nil {
		return err
	}
	fmt.Fprintln(deps.Stdout, "One-time codes disabled.")
	return nil
}

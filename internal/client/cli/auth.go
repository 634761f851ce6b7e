package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/healthkeeper/internal/client/client"
	"github.com/dmitrijs2005/healthkeeper/internal/client/models"
	"github.com/dmitrijs2005/healthkeeper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

func (a *App) readCredentials() (string, string, error) {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return "", "", err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return "", "", err
	}
	defer common.WipeByteArray(password)

	return email, string(password), nil
}

// Register creates an account. When the backend wants the address
// confirmed first the user is told to check their inbox; the command still
// reports success.
func (a *App) Register(ctx context.Context) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}

	res, err := a.store.SignUp(ctx, email, password)
	if err != nil {
		return a.report("Sign up", err)
	}

	fmt.Fprintln(a.out, "Success!")
	if res.VerificationRequired {
		fmt.Fprintln(a.out, "Please check your email to verify your account.")
	}
	return nil
}

// Login signs in with email and password.
func (a *App) Login(ctx context.Context) error {
	email, password, err := a.readCredentials()
	if err != nil {
		return err
	}

	sess, err := a.store.SignIn(ctx, email, password)
	if err != nil {
		return a.report("Login", err)
	}

	fmt.Fprintf(a.out, "Success! Signed in as %s\n", emailOf(sess))
	return nil
}

// OAuth signs in through provider (the configured one when empty) in the
// system browser.
func (a *App) OAuth(ctx context.Context, provider string) error {
	if provider == "" {
		provider = a.config.OAuthProvider
	}

	authURL, err := a.store.BeginOAuth(provider)
	if err != nil {
		return a.report("Sign in", err)
	}

	fmt.Fprintf(a.out, "Continue in your browser. If it did not open, visit:\n%s\n", authURL)

	redirect, err := a.authorize(ctx, authURL)
	if err != nil {
		return a.report("Sign in", err)
	}

	ok, err := a.store.CompleteOAuth(ctx, redirect)
	if err != nil {
		return a.report("Sign in", err)
	}
	if !ok {
		fmt.Fprintln(a.out, "Sign in was not completed. Please try again.")
		return nil
	}

	fmt.Fprintf(a.out, "Success! Signed in as %s\n", emailOf(a.store.Current().Session))
	return nil
}

// Logout always ends signed out locally.
func (a *App) Logout(ctx context.Context) error {
	a.store.SignOut(ctx)
	a.resetTracker()
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	sess, err := a.store.Refresh(ctx)
	if errors.Is(err, client.ErrSessionRevoked) {
		a.resetTracker()
		err = a.report("Refresh", err)
		fmt.Fprintln(a.out, "Your session has ended, please login again.")
		return err
	}
	if err != nil {
		return a.report("Refresh", err)
	}
	fmt.Fprintf(a.out, "Session refreshed%s\n", expiryText(sess))
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	sess, userID, err := a.currentSession()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Email:   %s\n", emailOf(sess))
	fmt.Fprintf(a.out, "User ID: %s\n", userID)
	if s := expiryText(sess); s != "" {
		fmt.Fprintf(a.out, "Session%s\n", s)
	}
	return nil
}

func emailOf(sess *models.Session) string {
	if sess == nil || sess.User == nil {
		return ""
	}
	return sess.User.Email
}

func expiryText(sess *models.Session) string {
	if sess == nil || sess.ExpiresAt == 0 {
		return ""
	}
	return fmt.Sprintf(", expires at %s", time.Unix(sess.ExpiresAt, 0).Local().Format(time.DateTime))
}

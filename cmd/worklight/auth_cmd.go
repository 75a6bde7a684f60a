package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/minseo-dev/worklight/internal/session"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in through the browser",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the local session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

func runLogin(cmd *cobra.Command, args []string) error {
	sessions, err := session.NewManager()
	if err != nil {
		return err
	}
	if sessions.SignedIn() {
		fmt.Printf("Already signed in as %s\n", sessions.User().Name)
		return nil
	}

	fmt.Println("Opening browser for sign-in...")
	s, err := sessions.Login(cmd.Context())
	if err != nil {
		return fmt.Errorf("sign-in failed: %w", err)
	}
	fmt.Printf("Signed in as %s (%s)\n", s.User.Name, s.User.Email)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	sessions, err := session.NewManager()
	if err != nil {
		return err
	}
	if err := sessions.Logout(); err != nil {
		return err
	}
	fmt.Println("Signed out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	sessions, err := session.NewManager()
	if err != nil {
		return err
	}
	u := sessions.User()
	if u == nil || !sessions.SignedIn() {
		fmt.Println("Not signed in. Run: worklight login")
		return nil
	}
	fmt.Printf("%s (%s)\n", u.Name, u.Email)
	return nil
}

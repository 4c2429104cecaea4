package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	loginEmail    string
	loginPassword string

	registerEmail    string
	registerPassword string
	registerName     string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate and persist the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)

		email := loginEmail
		if email == "" {
			var err error
			if email, err = prompt("Email: "); err != nil {
				return err
			}
		}
		password := loginPassword
		if password == "" {
			var err error
			if password, err = prompt("Password: "); err != nil {
				return err
			}
		}

		identity, err := a.session.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}

		if jsonOutput {
			return writeJSON(identity)
		}
		fmt.Printf("Logged in as %s (%s)\n", identity.Email, identity.Role)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and log into it",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)

		identity, err := a.session.Register(cmd.Context(), registerEmail, registerPassword, registerName)
		if err != nil {
			return err
		}

		if jsonOutput {
			return writeJSON(identity)
		}
		fmt.Printf("Registered %s (%s)\n", identity.Email, identity.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and discard stored credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)
		if err := a.session.Logout(cmd.Context()); err != nil {
			return err
		}
		if !jsonOutput {
			fmt.Println("Logged out")
		}
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated user",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := appFrom(cmd)

		identity := a.session.Identity()
		if identity == nil {
			return fmt.Errorf("not logged in (run 'orderdesk login')")
		}
		if jsonOutput {
			return writeJSON(identity)
		}
		fmt.Printf("%s <%s> — %s\n", identity.FullName, identity.Email, identity.Role)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "account password (prompted when omitted)")

	registerCmd.Flags().StringVar(&registerEmail, "email", "", "account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "account password")
	registerCmd.Flags().StringVar(&registerName, "name", "", "full name")
	_ = registerCmd.MarkFlagRequired("email")
	_ = registerCmd.MarkFlagRequired("password")
	_ = registerCmd.MarkFlagRequired("name")
}

func prompt(label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

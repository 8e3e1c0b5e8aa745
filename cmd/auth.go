package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/abhisek/carescope/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and save the session on this device",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")
		signUp, _ := cmd.Flags().GetBool("signup")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		in := bufio.NewReader(os.Stdin)
		if signUp && name == "" {
			if name, err = prompt(in, "Name: "); err != nil {
				return err
			}
		}
		if email == "" {
			if email, err = prompt(in, "Email: "); err != nil {
				return err
			}
		}
		password, err := promptPassword(in, "Password: ")
		if err != nil {
			return err
		}

		ctx, cancel := timeoutContext(cmd, 30*time.Second)
		defer cancel()

		var user *auth.User
		if signUp {
			user, err = e.session.SignUp(ctx, name, email, password)
		} else {
			user, err = e.session.SignIn(ctx, email, password)
		}
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return errors.New("invalid email or password")
		}
		if err != nil {
			return err
		}

		green := color.New(color.FgGreen)
		_, _ = green.Fprintf(os.Stdout, "Signed in as %s\n", userLabel(user))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.session.SignOut(cmd.Context()); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		fmt.Println("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if !e.restore(cmd) {
			dim := color.New(color.FgHiBlack)
			_, _ = dim.Fprintln(os.Stdout, "Not signed in.")
			return nil
		}
		u := e.session.User()
		bold := color.New(color.Bold)
		_, _ = bold.Fprintln(os.Stdout, userLabel(u))
		if u != nil && u.ID != "" {
			fmt.Printf("ID:    %s\n", u.ID)
		}
		if exp, ok := auth.TokenExpiry(e.session.Token()); ok {
			fmt.Printf("Until: %s\n", exp.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("name", "", "Display name (with --signup)")
	loginCmd.Flags().Bool("signup", false, "Create a new account")
}

func userLabel(u *auth.User) string {
	if u == nil {
		return "(unknown user)"
	}
	if u.Name != "" && u.Email != "" {
		return fmt.Sprintf("%s <%s>", u.Name, u.Email)
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

func prompt(in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(os.Stderr, label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads without echo from a terminal, or one line from a
// pipe.
func promptPassword(in *bufio.Reader, label string) (string, error) {
	fd := os.Stdin.Fd()
	if !isatty.IsTerminal(fd) {
		line, err := in.ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Fprint(os.Stderr, label)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

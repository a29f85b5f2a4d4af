package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// passwordFlags lets a password come from a flag or the first stdin line.
type passwordFlags struct {
	password string
	stdin    bool
}

func (p *passwordFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&p.password, "password", "", "account password")
	cmd.Flags().BoolVar(&p.stdin, "password-stdin", false, "read the password from stdin")
}

func (p *passwordFlags) read(cmd *cobra.Command) (string, error) {
	if !p.stdin {
		return p.password, nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newSignUpCmd(e *env) *cobra.Command {
	var pw passwordFlags
	cmd := &cobra.Command{
		Use:   "signup <username>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.authenticate(cmd, args[0], &pw, true)
		},
	}
	pw.register(cmd)
	return cmd
}

func newLogInCmd(e *env) *cobra.Command {
	var pw passwordFlags
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in to an existing account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.authenticate(cmd, args[0], &pw, false)
		},
	}
	pw.register(cmd)
	return cmd
}

func (e *env) authenticate(cmd *cobra.Command, username string, pw *passwordFlags, signup bool) error {
	password, err := pw.read(cmd)
	if err != nil {
		return err
	}
	a, err := e.open()
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := e.session()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	verb := "Logged in as"
	if signup {
		err = a.Auth.SignUp(ctx, sess, username, password)
		verb = "Signed up as"
	} else {
		err = a.Auth.LogIn(ctx, sess, username, password)
	}
	if err != nil {
		return err
	}
	if err := e.saveSession(sess); err != nil {
		return err
	}
	return e.print(cmd, map[string]string{"username": username}, func(w io.Writer) {
		fmt.Fprintln(w, verb, username)
	})
}

func newLogOutCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.open()
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := e.session()
			if err != nil {
				return err
			}
			a.Auth.LogOut(sess)
			if err := e.saveSession(sess); err != nil {
				return err
			}
			return e.print(cmd, map[string]bool{"logged_out": true}, func(w io.Writer) {
				fmt.Fprintln(w, "Logged out")
			})
		},
	}
}

func newWhoAmICmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the logged-in username",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := e.session()
			if err != nil {
				return err
			}
			name, ok := sess.User()
			return e.print(cmd, map[string]any{"username": name, "logged_in": ok}, func(w io.Writer) {
				if !ok {
					fmt.Fprintln(w, "Not logged in")
					return
				}
				fmt.Fprintln(w, name)
			})
		},
	}
}

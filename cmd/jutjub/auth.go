package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	authUC "github.com/khoahotran/jutjub/internal/application/usecase/auth"
	"github.com/khoahotran/jutjub/internal/domain/user"
)

// readPassword takes the password from the flag or the first line of stdin.
func readPassword(cmd *cobra.Command, flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the account and the local session",
	}

	var loginPassword string
	login := &cobra.Command{
		Use:   "login <username-or-email>",
		Short: "Log in and store the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := readPassword(cmd, loginPassword)
			if err != nil {
				return err
			}
			out, err := authUC.NewLoginUseCase(a.client, a.sessions, a.decoder, a.logger).
				Execute(cmd.Context(), authUC.LoginInput{UsernameOrEmail: args[0], Password: pw})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Logged in as %s\n", out.Session.Username)
			if !out.Session.ExpiresAt.IsZero() {
				fmt.Fprintf(a.out, "Session expires %s\n", out.Session.ExpiresAt.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}
	login.Flags().StringVarP(&loginPassword, "password", "p", "", "password (read from stdin when omitted)")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := authUC.NewLogoutUseCase(a.sessions).Execute(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Logged out")
			return nil
		},
	}

	var req user.RegisterRequest
	register := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readPassword(cmd, req.Password)
			if err != nil {
				return err
			}
			req.Password = pw
			out, err := authUC.NewRegisterUseCase(a.client, a.logger).Execute(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, out.Message)
			return nil
		},
	}
	rf := register.Flags()
	rf.StringVar(&req.Username, "username", "", "username (at least 3 characters)")
	rf.StringVar(&req.Email, "email", "", "email address")
	rf.StringVarP(&req.Password, "password", "p", "", "password (at least 6 characters)")
	rf.StringVar(&req.FirstName, "first-name", "", "")
	rf.StringVar(&req.LastName, "last-name", "", "")
	rf.StringVar(&req.Address, "address", "", "")
	rf.StringVar(&req.City, "city", "", "")
	rf.StringVar(&req.Country, "country", "", "")
	rf.StringVar(&req.Phone, "phone", "", "")

	activate := &cobra.Command{
		Use:   "activate <token>",
		Short: "Activate an account with the emailed token",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := ""
			if len(args) == 1 {
				token = args[0]
			}
			msg, err := authUC.NewActivateUseCase(a.client).Execute(cmd.Context(), token)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, msg)
			return nil
		},
	}

	cmd.AddCommand(login, logout, register, activate)
	return cmd
}

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/gamevault/internal/auth"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage the accounts that can log in",
	}
	cmd.AddCommand(newUserAddCmd(a))
	return cmd
}

func newUserAddCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "add <email>",
		Short: "Add an account",
		Long: `Add registers an account that can log in to the web application. The
password is taken from --password or, when that is empty, from the first
line of standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if password == "" {
				password, err = readPassword(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}

			backend, err := a.attachBackend()
			if err != nil {
				return err
			}
			defer a.detach(backend, &err)

			users, err := backend.Users()
			if err != nil {
				return systemError(err)
			}
			id, err := users.Create(cmd.Context(), args[0], hash)
			if err != nil {
				return fmt.Errorf("add user %s: %w", args[0], err)
			}
			a.logger.Info("user added", "email", args[0], "id", id)
			if a.jsonMode {
				return writeJSON(cmd.OutOrStdout(), map[string]string{"user_id": id, "email": args[0]})
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "account password (default: read from stdin)")
	return cmd
}

// readPassword returns the first line of r without its line ending.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", systemError(fmt.Errorf("read password: %w", err))
	}
	return strings.TrimRight(line, "\r\n"), nil
}

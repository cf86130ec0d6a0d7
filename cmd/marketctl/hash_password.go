package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"digimarket.backend/pkg/crypto"
)

func (f *CommandFactory) NewHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash of a password. Reads stdin when no argument is given",
		Args:  cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			var password string
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return ErrPasswordRequired
				}
				password = strings.TrimRight(line, "\r\n")
			}
			if password == "" {
				return ErrPasswordRequired
			}

			hash, err := crypto.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newTokenCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage the stored bearer token",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <token>",
		Short: "Store the bearer token sent to the QC backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(args[0])
			if token == "" {
				return c.fail(errors.New("token must not be blank"))
			}
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return c.fail(err)
			}
			defer rt.Close()
			if err := rt.Tokens.Set(cmd.Context(), token); err != nil {
				return c.fail(err)
			}
			fmt.Fprintln(c.stdout, "token stored")
			return nil
		},
	}, &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.runtime(cmd.Context())
			if err != nil {
				return c.fail(err)
			}
			defer rt.Close()
			if err := rt.Tokens.Clear(cmd.Context()); err != nil {
				return c.fail(err)
			}
			fmt.Fprintln(c.stdout, "token cleared")
			return nil
		},
	})
	return cmd
}

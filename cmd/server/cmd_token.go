// cmd/server/cmd_token.go
package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repuestos-py/marketplace/internal/database"
	"github.com/repuestos-py/marketplace/internal/services"
)

var tokenUID string

// Issues a bearer token for an existing user. Meant for operators and local
// development; the storefront gets its tokens from the identity provider.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Print an access token for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := bootstrap()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		st, err := database.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close(context.Background())

		token, err := services.NewAuthService(st, cfg).IssueToken(ctx, tokenUID)
		if err != nil {
			return err
		}
		fmt.Println(token.AccessToken)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenUID, "uid", "", "user id to issue the token for")
	_ = tokenCmd.MarkFlagRequired("uid")
}

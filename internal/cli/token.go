package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/cmlabs-hris/attendance-engine/internal/domain/user"
	"github.com/cmlabs-hris/attendance-engine/internal/pkg/jwt"
	"github.com/spf13/cobra"
)

type tokenOptions struct {
	userID string
	name   string
	role   string
}

// TokenResult is the token command output.
type TokenResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewTokenCommand creates the token command. Identity is owned by the HR
// system; this issues tokens for local development only.
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &tokenOptions{}

	cmd := &cobra.Command{
		Use:          "token",
		Short:        "Issue an access token for a user (development)",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runToken(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.userID, "user-id", "", "user id")
	cmd.Flags().StringVar(&opts.name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.role, "role", string(user.RoleEmployee), "role (admin|hr|employee)")
	_ = cmd.MarkFlagRequired("user-id")

	return cmd
}

func runToken(cmd *cobra.Command, rootOpts *RootOptions, opts *tokenOptions) error {
	role := user.Role(opts.role)
	if !role.Valid() {
		return fmt.Errorf("%w: %q", user.ErrInvalidRole, opts.role)
	}

	cfg, err := rootOpts.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	svc := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	token, expiresAt, err := svc.GenerateAccessToken(user.Actor{ID: opts.userID, Name: opts.name, Role: role})
	if err != nil {
		return err
	}

	out := TokenResult{Token: token, ExpiresAt: time.Unix(expiresAt, 0).UTC()}
	return rootOpts.output(cmd.OutOrStdout(), out, func(w io.Writer) {
		fmt.Fprintln(w, token)
	})
}

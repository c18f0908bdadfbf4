package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/ambucheck/pkg/models"
)

type userAddOptions struct {
	Username string
	Name     string
	Role     string
	Password string
}

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage login accounts",
	}
	cmd.AddCommand(newUserAddCommand(rootOpts))
	return cmd
}

func newUserAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &userAddOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a login account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUserAdd(rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Username, "username", "", "login name (required)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.Role, "role", models.RoleUser, "admin|user")
	cmd.Flags().StringVar(&opts.Password, "password", "", "password (required)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runUserAdd(rootOpts *RootOptions, opts *userAddOptions, cmd *cobra.Command) error {
	username := strings.TrimSpace(opts.Username)
	if username == "" || opts.Password == "" {
		return errors.New("username and password are required")
	}
	if opts.Role != models.RoleAdmin && opts.Role != models.RoleUser {
		return fmt.Errorf("invalid role %q: must be %s or %s", opts.Role, models.RoleAdmin, models.RoleUser)
	}

	ctx := cmd.Context()
	store, _, err := rootOpts.openStore(ctx, cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	existing, err := store.GetUserByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", username, err)
	}
	if existing != nil {
		return fmt.Errorf("user %q already exists", username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	name := opts.Name
	if name == "" {
		name = username
	}

	id, err := store.CreateUser(ctx, &models.User{Username: username, PasswordHash: string(hash), Role: opts.Role, Name: name})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d, role %s)\n", username, id, opts.Role)
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"rsvphub/internal/gateway"
	"rsvphub/internal/session"
)

// RegisterOptions holds flags for the register command.
type RegisterOptions struct {
	Name     string
	Email    string
	Password string
	Admin    bool
}

func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RegisterOptions{}

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: withApp(rootOpts, func(ctx context.Context, app *App, _ []string) error {
			user, err := app.store.CreateUser(ctx, opts.Name, opts.Email, opts.Password, opts.Admin)
			if err != nil {
				if errors.Is(err, gateway.ErrConflict) {
					return fmt.Errorf("an account with email %s already exists", opts.Email)
				}
				return err
			}
			fmt.Printf("registered %s <%s> (id %s)\n", user.Name, user.Email, user.ID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "display name")
	cmd.Flags().StringVar(&opts.Email, "email", "", "email address")
	cmd.Flags().StringVar(&opts.Password, "password", "", "password")
	cmd.Flags().BoolVar(&opts.Admin, "admin", false, "register as a community organizer")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

// LoginOptions holds flags for the login command.
type LoginOptions struct {
	Email    string
	Password string
}

func NewLoginCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoginOptions{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Start a session",
		RunE: withApp(rootOpts, func(ctx context.Context, app *App, _ []string) error {
			user, err := app.store.Authenticate(ctx, opts.Email, opts.Password)
			if err != nil {
				if errors.Is(err, gateway.ErrBackendUnavailable) {
					return errors.New("the service is unreachable, try again later")
				}
				return err
			}
			if user == nil {
				return errors.New("invalid email or password")
			}

			snap := &session.Snapshot{User: user}
			if app.remote != nil {
				snap.Token = app.remote.Token()
			}
			if err := app.guard.Start(ctx, snap); err != nil {
				return fmt.Errorf("save session: %w", err)
			}
			fmt.Printf("logged in as %s\n", user.Name)
			return nil
		}),
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "email address")
	cmd.Flags().StringVar(&opts.Password, "password", "", "password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func NewLogoutCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: withApp(rootOpts, func(ctx context.Context, app *App, _ []string) error {
			if err := app.guard.Logout(ctx); err != nil {
				return err
			}
			fmt.Println("logged out")
			return nil
		}),
	}
}

func NewUsersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List registered accounts",
		RunE: withApp(rootOpts, func(ctx context.Context, app *App, _ []string) error {
			if _, err := app.resumeSession(ctx); err != nil {
				return err
			}
			users, err := app.store.Users(ctx)
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Println("no accounts")
				return nil
			}
			for _, u := range users {
				role := "member"
				if u.IsAdmin {
					role = "organizer"
				}
				fmt.Printf("%s  %s <%s>  %s\n", u.ID, u.Name, u.Email, role)
			}
			return nil
		}),
	}
}

func NewWhoamiCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		RunE: withApp(rootOpts, func(ctx context.Context, app *App, _ []string) error {
			snap, err := app.resumeSession(ctx)
			if err != nil {
				return err
			}
			role := "member"
			if snap.User.IsAdmin {
				role = "organizer"
			}
			fmt.Printf("%s <%s> (%s)\n", snap.User.Name, snap.User.Email, role)
			if snap.Community != nil {
				fmt.Printf("community: %s (%s)\n", snap.Community.Name, snap.Community.Code)
			}
			return nil
		}),
	}
}

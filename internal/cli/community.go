package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"rsvphub/internal/checkin"
	"rsvphub/internal/gateway"
	"rsvphub/internal/model"
)

func NewCommunityCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "community",
		Short: "Manage communities",
	}
	cmd.AddCommand(newCommunityCreateCommand(rootOpts))
	cmd.AddCommand(newCommunityListCommand(rootOpts))
	cmd.AddCommand(newCommunityJoinCommand(rootOpts))
	cmd.AddCommand(newCommunityUseCommand(rootOpts))
	return cmd
}

// CommunityCreateOptions holds flags for community create.
type CommunityCreateOptions struct {
	Name        string
	Description string
}

func newCommunityCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CommunityCreateOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a community with a fresh join code",
		RunE: withApp(rootOpts, func(ctx context.Context, app *App, _ []string) error {
			snap, err := app.resumeSession(ctx)
			if err != nil {
				return err
			}

			community := &model.Community{
				Name:        opts.Name,
				Description: opts.Description,
				AdminID:     snap.User.ID,
			}
			if app.remote == nil {
				// The hosted service issues its own code; the local
				// backend takes the caller's.
				if !snap.User.IsAdmin {
					return errors.New("only organizer accounts can create communities")
				}
				community.Code, err = checkin.UniqueCode(ctx, checkin.DefaultCodeLength,
					func(ctx context.Context, code string) (bool, error) {
						existing, err := app.store.CommunityByCode(ctx, code)
						return existing != nil, err
					})
				if err != nil {
					return err
				}
			}

			created, err := app.store.CreateCommunity(ctx, community)
			if err != nil {
				if errors.Is(err, gateway.ErrForbidden) {
					return errors.New("only organizer accounts can create communities")
				}
				return err
			}
			fmt.Printf("created community %s, join code %s\n", created.Name, created.Code)
			return app.guard.SetCommunity(ctx, created)
		}),
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "community name")
	cmd.Flags().StringVar(&opts.Description, "description", "", "community description")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newCommunityListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List communities",
		RunE: withApp(rootOpts, func(ctx context.Context, app *App, _ []string) error {
			if _, err := app.resumeSession(ctx); err != nil {
				return err
			}
			communities, err := app.store.Communities(ctx)
			if err != nil {
				return err
			}
			if len(communities) == 0 {
				fmt.Println("no communities")
				return nil
			}
			for _, c := range communities {
				fmt.Printf("%s  %s  %d member(s)\n", c.Code, c.Name, len(c.Members))
			}
			return nil
		}),
	}
}

func newCommunityJoinCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "join <code>",
		Short: "Join a community by its code",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(rootOpts, func(ctx context.Context, app *App, args []string) error {
			snap, err := app.resumeSession(ctx)
			if err != nil {
				return err
			}
			community, err := app.store.JoinCommunity(ctx, args[0], snap.User.ID)
			if err != nil {
				return err
			}
			if community == nil {
				return fmt.Errorf("no community with code %s", args[0])
			}
			fmt.Printf("joined %s\n", community.Name)
			return app.guard.SetCommunity(ctx, community)
		}),
	}
}

func newCommunityUseCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "use <code>",
		Short: "Select the community to work in",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(rootOpts, func(ctx context.Context, app *App, args []string) error {
			snap, err := app.resumeSession(ctx)
			if err != nil {
				return err
			}
			community, err := app.store.CommunityByCode(ctx, args[0])
			if err != nil {
				return err
			}
			if community == nil {
				return fmt.Errorf("no community with code %s", args[0])
			}
			if !community.IsMember(snap.User.ID) {
				return fmt.Errorf("you are not a member of %s, join it first", community.Name)
			}
			fmt.Printf("working in %s\n", community.Name)
			return app.guard.SetCommunity(ctx, community)
		}),
	}
}

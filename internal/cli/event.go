package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"rsvphub/internal/gateway"
	"rsvphub/internal/model"
)

func NewEventCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Manage events in the selected community",
	}
	cmd.AddCommand(newEventCreateCommand(rootOpts))
	cmd.AddCommand(newEventListCommand(rootOpts))
	return cmd
}

// EventCreateOptions holds flags for event create.
type EventCreateOptions struct {
	Name        string
	Date        string
	Time        string
	Location    string
	Description string
}

func newEventCreateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EventCreateOptions{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		RunE: withApp(rootOpts, func(ctx context.Context, app *App, _ []string) error {
			snap, err := app.requireCommunity(ctx)
			if err != nil {
				return err
			}
			if app.remote == nil && snap.Community.AdminID != snap.User.ID {
				return errors.New("only the community organizer can create events")
			}

			event, err := app.store.CreateEvent(ctx, &model.Event{
				CommunityID: snap.Community.ID,
				Name:        opts.Name,
				Date:        opts.Date,
				Time:        opts.Time,
				Location:    opts.Location,
				Description: opts.Description,
				CreatedBy:   snap.User.ID,
			})
			if err != nil {
				if errors.Is(err, gateway.ErrForbidden) {
					return errors.New("only the community organizer can create events")
				}
				return err
			}
			fmt.Printf("created event %s on %s at %s (id %s)\n", event.Name, event.Date, event.Time, event.ID)
			return nil
		}),
	}

	cmd.Flags().StringVar(&opts.Name, "name", "", "event name")
	cmd.Flags().StringVar(&opts.Date, "date", "", "event date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.Time, "time", "", "event time (HH:MM)")
	cmd.Flags().StringVar(&opts.Location, "location", "", "event location")
	cmd.Flags().StringVar(&opts.Description, "description", "", "event description")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("time")

	return cmd
}

func newEventListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the selected community's events",
		RunE: withApp(rootOpts, func(ctx context.Context, app *App, _ []string) error {
			snap, err := app.requireCommunity(ctx)
			if err != nil {
				return err
			}
			events, err := app.store.EventsForCommunity(ctx, snap.Community.ID)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("no upcoming events")
				return nil
			}
			for _, e := range events {
				fmt.Printf("%s  %s %s  %s", e.ID, e.Date, e.Time, e.Name)
				if e.Location != "" {
					fmt.Printf("  @ %s", e.Location)
				}
				fmt.Println()
			}
			return nil
		}),
	}
}

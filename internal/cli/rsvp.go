package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"rsvphub/internal/checkin"
	"rsvphub/internal/gateway"
	"rsvphub/internal/model"
)

func NewRSVPCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rsvp",
		Short: "RSVP to events and inspect attendance codes",
	}
	cmd.AddCommand(newRSVPIssueCommand(rootOpts))
	cmd.AddCommand(newRSVPListCommand(rootOpts))
	cmd.AddCommand(newRSVPShowCommand(rootOpts))
	return cmd
}

func newRSVPIssueCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "issue <event-id>",
		Short: "RSVP to an event and receive an attendance code",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(rootOpts, func(ctx context.Context, app *App, args []string) error {
			snap, err := app.requireCommunity(ctx)
			if err != nil {
				return err
			}
			event, err := findEvent(ctx, app, snap.Community.ID, args[0])
			if err != nil {
				return err
			}

			rsvp, err := checkin.NewIssuer(app.store).Issue(ctx, event, snap.User)
			if err != nil {
				return err
			}
			fmt.Printf("you're going to %s, attendance code: %s\n", event.Name, rsvp.Code)
			return nil
		}),
	}
}

func newRSVPListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list <event-id>",
		Short: "List an event's RSVPs",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(rootOpts, func(ctx context.Context, app *App, args []string) error {
			snap, err := app.requireCommunity(ctx)
			if err != nil {
				return err
			}
			event, err := findEvent(ctx, app, snap.Community.ID, args[0])
			if err != nil {
				return err
			}
			if app.remote == nil && snap.Community.AdminID != snap.User.ID {
				return errors.New("only the community organizer can list RSVPs")
			}

			rsvps, err := app.store.RSVPsForEvent(ctx, event.ID)
			if err != nil {
				if errors.Is(err, gateway.ErrForbidden) {
					return errors.New("only the community organizer can list RSVPs")
				}
				return err
			}
			if len(rsvps) == 0 {
				fmt.Println("no RSVPs yet")
				return nil
			}
			for _, r := range rsvps {
				status := "not checked in"
				if r.Scanned {
					status = "checked in " + r.ScanTimestamp.Local().Format("2006-01-02 15:04")
				}
				fmt.Printf("%s  %s  %s\n", r.Code, r.UserName, status)
			}
			return nil
		}),
	}
}

func newRSVPShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <code>",
		Short: "Look up an attendance code",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(rootOpts, func(ctx context.Context, app *App, args []string) error {
			if _, err := app.resumeSession(ctx); err != nil {
				return err
			}
			detail, err := app.store.RSVPByCode(ctx, args[0])
			if err != nil {
				return err
			}
			if detail == nil {
				return fmt.Errorf("no RSVP with code %s", args[0])
			}
			fmt.Printf("%s  %s  event: %s", detail.Code, detail.UserName, detail.EventName)
			if detail.Scanned {
				fmt.Printf("  (checked in)")
			}
			fmt.Println()
			return nil
		}),
	}
}

// findEvent resolves an event id within the selected community.
func findEvent(ctx context.Context, app *App, communityID uuid.UUID, raw string) (*model.Event, error) {
	eventID, err := uuid.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid event id %q", raw)
	}
	events, err := app.store.EventsForCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}
	for _, e := range events {
		if e.ID == eventID {
			out := e
			return &out, nil
		}
	}
	return nil, fmt.Errorf("no event %s in the selected community", raw)
}

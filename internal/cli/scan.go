package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"rsvphub/internal/checkin"
)

func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <code>",
		Short: "Redeem an attendance code at the door",
		Long: `Redeem an attendance code at the door.

A code redeems exactly once: the first scan checks the attendee in, any
later scan of the same code reports when and that it was already used.
Codes from events outside the selected community are rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: withApp(rootOpts, func(ctx context.Context, app *App, args []string) error {
			snap, err := app.requireCommunity(ctx)
			if err != nil {
				return err
			}
			if app.remote == nil && snap.Community.AdminID != snap.User.ID {
				return errors.New("only the community organizer can scan codes")
			}

			result, err := checkin.NewVerifier(app.store).Verify(ctx, args[0], snap.Community.ID, snap.User.ID)
			if err != nil {
				return err
			}

			switch result.Status {
			case checkin.StatusVerified:
				fmt.Printf("checked in %s for %s\n", result.RSVP.UserName, result.EventName)
			case checkin.StatusAlreadyVerified:
				when := ""
				if result.RSVP.ScanTimestamp != nil {
					when = " at " + result.RSVP.ScanTimestamp.Local().Format("2006-01-02 15:04")
				}
				fmt.Printf("code %s was already used%s\n", args[0], when)
			case checkin.StatusWrongScope:
				fmt.Printf("code %s belongs to an event outside this community\n", args[0])
			case checkin.StatusCodeNotFound:
				fmt.Printf("code %s not found\n", args[0])
			}
			return nil
		}),
	}
}

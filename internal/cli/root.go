// Package cli implements the rsvpctl command tree. Every command opens the
// configured gateway backend, resumes the persisted session when one is
// required, runs one operation, and exits.
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Config string
}

// NewRootCommand creates the root command for rsvpctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "rsvpctl",
		Short:         "Community event RSVPs and door check-in",
		Long:          "rsvpctl manages communities, events, and RSVP attendance codes,\nagainst either a local database or the hosted API.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.Config, "config", "config.yaml", "path to config file")

	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewLogoutCommand(opts))
	cmd.AddCommand(NewWhoamiCommand(opts))
	cmd.AddCommand(NewUsersCommand(opts))
	cmd.AddCommand(NewCommunityCommand(opts))
	cmd.AddCommand(NewEventCommand(opts))
	cmd.AddCommand(NewRSVPCommand(opts))
	cmd.AddCommand(NewScanCommand(opts))

	return cmd
}

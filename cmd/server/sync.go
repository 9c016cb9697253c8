package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"healthreg/internal/patient"
	"healthreg/internal/platform/config"
)

// Offline queue bookkeeping for operators and sync scripts. These commands
// open the queue directly and never contact the remote.

func newPendingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List registrations waiting to be synced, as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := buildModule(cmd)
			if err != nil {
				return err
			}
			defer m.Close()

			records, err := m.Reconciler.GetPending(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"count": len(records), "records": records})
		},
	}
}

func newConfirmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "confirm <id>...",
		Short: "Mark queued registrations as synced",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := buildModule(cmd)
			if err != nil {
				return err
			}
			defer m.Close()

			for _, id := range args {
				if err := m.Reconciler.Confirm(cmd.Context(), id); err != nil {
					return fmt.Errorf("confirm %s: %w", id, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "confirmed %d record(s)\n", len(args))
			return nil
		},
	}
}

func newPruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Drop synced registrations from the offline queue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := buildModule(cmd)
			if err != nil {
				return err
			}
			defer m.Close()

			removed, err := m.Reconciler.ConfirmAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d synced record(s)\n", removed)
			return nil
		},
	}
}

// buildModule wires the queue side only; the remote is irrelevant to
// bookkeeping.
func buildModule(cmd *cobra.Command) (*patient.Module, error) {
	app, err := appFrom(cmd)
	if err != nil {
		return nil, err
	}
	cfg := *app.cfg
	cfg.Remote.Kind = config.RemoteNone
	return patient.Build(cmd.Context(), &cfg, app.logger, nil)
}

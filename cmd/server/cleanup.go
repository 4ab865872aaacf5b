package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/DoyleJ11/lol-draft-series/internal/janitor"
)

func newCleanupCmd() *cobra.Command {
	var maxAge time.Duration
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete idle sessions that never started drafting, then exit",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			st, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer multierr.AppendInvoke(&err, multierr.Close(st))

			if maxAge <= 0 {
				maxAge = cfg.SessionMaxAge
			}
			n, err := janitor.New(st, nil, maxAge, log).Sweep(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d session(s)\n", n)
			return err
		},
	}
	cmd.Flags().DurationVar(&maxAge, "max-age", 0, "Idle age after which sessions are removed (env: DRAFT_SESSION_MAX_AGE)")
	return cmd
}

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"digimarket.backend/internal/domain/entities"
	domainRepos "digimarket.backend/internal/domain/repositories"
	"digimarket.backend/internal/infrastructure/repositories"
)

const defaultBackfillBatch = 500

func (f *CommandFactory) NewBackfillEarningsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backfill-earnings",
		Short: "Persist the vendor/platform split on orders written before it was stored",
		Args:  cobra.ExactArgs(0),

		RunE: func(cmd *cobra.Command, _ []string) error {
			batch, _ := cmd.Flags().GetInt("batch")
			if err := f.connect(); err != nil {
				return err
			}
			n, err := backfillEarnings(cmd.Context(), repositories.NewOrderRepository(f.db), batch, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			cmd.Printf("Backfilled %d orders\n", n)
			return nil
		},
	}

	cmd.Flags().Int("batch", defaultBackfillBatch, "orders per batch")
	return cmd
}

// backfillEarnings fills the split batch by batch until no order is missing one.
func backfillEarnings(ctx context.Context, orders domainRepos.OrderRepository, batch int, out io.Writer) (int, error) {
	if batch <= 0 {
		batch = defaultBackfillBatch
	}
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		rows, err := orders.ListMissingEarnings(ctx, batch)
		if err != nil {
			return total, err
		}
		if len(rows) == 0 {
			return total, nil
		}
		for _, o := range rows {
			vendor, platform := entities.SplitEarnings(o.AmountCents)
			if err := orders.SetEarnings(ctx, o.ID, vendor, platform); err != nil {
				return total, fmt.Errorf("order %s: %w", o.ID, err)
			}
			total++
		}
		fmt.Fprintf(out, "... %d orders\n", total)
	}
}

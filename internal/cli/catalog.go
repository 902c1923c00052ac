package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rodrigiego-coder/beauty-manager/internal/config"
	"github.com/rodrigiego-coder/beauty-manager/internal/store"
)

func newCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the salon catalog",
	}

	cmd.AddCommand(newCatalogSeedCmd())
	cmd.AddCommand(newCatalogShowCmd())
	return cmd
}

func newCatalogSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed [file]",
		Short: "Replace the stored catalog from a YAML seed file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			if cfg.Salon.ID == "" {
				return fmt.Errorf("salon.id is not configured")
			}

			path := cfg.Salon.Catalog
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				return fmt.Errorf("no catalog file given and salon.catalog is not configured")
			}

			if err := paths.EnsureDirs(); err != nil {
				return err
			}
			db, err := store.Open(paths.DatabasePath(&cfg), log)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			return seedCatalog(context.Background(), store.NewCatalogStore(db), cfg.Salon.ID, path, log)
		},
	}
}

func newCatalogShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(paths.Config)
			if err != nil {
				return err
			}
			if cfg.Salon.ID == "" {
				return fmt.Errorf("salon.id is not configured")
			}

			db, err := store.Open(paths.DatabasePath(&cfg), log)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			ctx := context.Background()
			catalog := store.NewCatalogStore(db)

			services, err := catalog.ActiveServices(ctx, cfg.Salon.ID)
			if err != nil {
				return err
			}
			pros, err := catalog.ActiveProfessionals(ctx, cfg.Salon.ID)
			if err != nil {
				return err
			}
			products, err := catalog.Products(ctx, cfg.Salon.ID)
			if err != nil {
				return err
			}
			hours, err := catalog.Hours(ctx, cfg.Salon.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Services (%d):\n", len(services))
			for _, s := range services {
				fmt.Fprintf(out, "  %-30s R$ %.2f\n", s.Name, s.Price)
			}
			fmt.Fprintf(out, "Professionals (%d):\n", len(pros))
			for _, p := range pros {
				fmt.Fprintf(out, "  %s\n", p.Name)
			}
			if len(products) > 0 {
				fmt.Fprintf(out, "Products (%d):\n", len(products))
				for _, p := range products {
					fmt.Fprintf(out, "  %-30s R$ %.2f\n", p.Name, p.Price)
				}
			}
			if hours.Weekdays != "" {
				fmt.Fprintf(out, "Hours: %s", hours.Weekdays)
				if hours.Saturday != "" {
					fmt.Fprintf(out, "; sábado %s", hours.Saturday)
				}
				if hours.Sunday != "" {
					fmt.Fprintf(out, "; domingo %s", hours.Sunday)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

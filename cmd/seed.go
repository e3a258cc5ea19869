package cmd

import (
	"fmt"

	"github.com/Shashank-1177/SBFood/config"
	"github.com/Shashank-1177/SBFood/seed"
	"github.com/Shashank-1177/SBFood/services"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var seedOpts seed.Options

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with demo restaurants, menus and customers",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.close()
		if err := config.Migrate(a.db); err != nil {
			return err
		}

		svc := services.New(a.db, services.Options{Logger: a.log, PublicURL: a.cfg.Public.URL})
		bar := progressbar.NewOptions(seedOpts.Steps(),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionSetDescription("seeding"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		res, err := seed.Run(cmd.Context(), svc, seedOpts, bar)
		_ = bar.Finish()
		if err != nil {
			return err
		}

		a.log.Info().
			Int("restaurants", res.Restaurants).
			Int("products", res.Products).
			Int("customers", res.Customers).
			Msg("seed complete")
		fmt.Fprintf(cmd.OutOrStdout(), "admin login: %s (password %q)\n", res.AdminEmail, seedOpts.Password)
		return nil
	},
}

func init() {
	f := seedCmd.Flags()
	f.IntVar(&seedOpts.Restaurants, "restaurants", 10, "number of approved restaurants")
	f.IntVar(&seedOpts.Products, "products", 8, "products per restaurant")
	f.IntVar(&seedOpts.Customers, "customers", 20, "number of customers")
	f.StringVar(&seedOpts.Password, "password", "password123", "password for every seeded account")
	f.StringVar(&seedOpts.Tag, "tag", "", "suffix that keeps emails unique across runs")
	f.Int64Var(&seedOpts.Seed, "seed", 42, "random seed")
}

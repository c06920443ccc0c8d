package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"registrar-factura/internal/adapters/cli"
	"registrar-factura/internal/app"
	"registrar-factura/internal/config"
	"registrar-factura/internal/core"
	"registrar-factura/internal/db"
	"registrar-factura/internal/logger"
)

// env is what a command needs once configuration and the database are up.
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	pool  *pgxpool.Pool
	store *db.Store
	svc   app.ApplicationService
}

func (e *env) close() {
	if e.pool != nil {
		e.pool.Close()
	}
	_ = e.log.Sync()
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "app",
		Short:         "Register and inspect invoices",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./config.toml)")

	setup := func(ctx context.Context, withDB bool) (*env, error) {
		return newEnv(ctx, configFile, withDB)
	}

	root.AddCommand(
		newSubmitCmd("register", "Register an invoice", setup, cli.Register),
		newSubmitCmd("validate", "Check an invoice without registering it", setup, cli.Validate),
		newShowCmd(setup),
		newSchemaCmd(setup),
		newSeedCmd(setup),
	)
	return root
}

type setupFunc func(ctx context.Context, withDB bool) (*env, error)

type submitFunc func(ctx context.Context, svc app.ApplicationService, in io.Reader, out io.Writer) error

func newSubmitCmd(use, short string, setup setupFunc, run submitFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use + " [file]",
		Short: short,
		Long:  short + ". The request is read from file, or from stdin when no file is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer e.close()

			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return run(cmd.Context(), e.svc, in, cmd.OutOrStdout())
		},
	}
}

func newShowCmd(setup setupFunc) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <ruc> <codigo>",
		Short: "Print a registered invoice with its line items",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer e.close()
			return cli.Show(cmd.Context(), e.svc, args[0], args[1], asJSON, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a text report")
	return cmd
}

func newSchemaCmd(setup setupFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the registration request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer e.close()
			return cli.Schema(e.svc, cmd.OutOrStdout())
		},
	}
}

// newSeedCmd provisions sellers and buyers, which registration requires but
// never creates.
func newSeedCmd(setup setupFunc) *cobra.Command {
	seed := &cobra.Command{
		Use:   "seed",
		Short: "Create or rename sellers and buyers",
	}
	party := func(use string, create func(ctx context.Context, s *db.Store, id int64, name string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <ruc> <name>",
			Short: "Create or rename a " + use,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := core.ParseTaxID(args[0])
				if err != nil {
					return err
				}
				e, err := setup(cmd.Context(), true)
				if err != nil {
					return err
				}
				defer e.close()
				if err := create(cmd.Context(), e.store, id, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d saved.\n", use, id)
				return nil
			},
		}
	}
	seed.AddCommand(
		party("seller", func(ctx context.Context, s *db.Store, id int64, name string) error {
			return s.CreateSeller(ctx, core.Seller{TaxID: id, Name: name})
		}),
		party("buyer", func(ctx context.Context, s *db.Store, id int64, name string) error {
			return s.CreateBuyer(ctx, core.Buyer{TaxID: id, Name: name})
		}),
	)
	return seed
}

func newEnv(ctx context.Context, configFile string, withDB bool) (*env, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	// Logs go to stderr so stdout stays machine-readable.
	logCfg := cfg.Log
	if logCfg.Output == "stdout" {
		logCfg.Output = "stderr"
	}
	zl, err := logger.New(logCfg)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, log: zl}

	var invoices app.InvoiceService
	if withDB {
		pool, err := db.NewPool(ctx, cfg.Database)
		if err != nil {
			_ = zl.Sync()
			return nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		e.pool = pool
		e.store = db.NewStore(pool)
		invoices = core.NewInvoiceService(e.store, core.ServiceConfig{
			DateLayout:  cfg.Invoice.DateLayout,
			FanOutLimit: cfg.Invoice.FanOutLimit,
		}, zl)
	}

	svc, err := app.NewAppService(invoices, cfg.Invoice.DateLayout)
	if err != nil {
		e.close()
		return nil, err
	}
	e.svc = svc
	return e, nil
}

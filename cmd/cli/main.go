package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"text/tabwriter"
	"time"

	dbembed "github.com/benpsk/stockview/db"
	"github.com/benpsk/stockview/internal/config"
	"github.com/benpsk/stockview/internal/inventory"
	"github.com/benpsk/stockview/internal/logging"
	"github.com/benpsk/stockview/internal/postgres"
	"github.com/benpsk/stockview/internal/remote"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

const defaultMigrationsDir = "db/migrations"

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logrus.WithError(err).Fatal("stockview")
	}
}

func newApp() *cli.App {
	pathFlag := &cli.StringFlag{
		Name:  "path",
		Value: defaultMigrationsDir,
		Usage: "directory containing .sql migrations (overrides embedded bundle)",
	}

	return &cli.App{
		Name:  "stockview",
		Usage: "operate the stock view database and inventory service",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "apply pending migrations",
				Flags:  []cli.Flag{pathFlag},
				Action: runMigrate,
				Subcommands: []*cli.Command{
					{
						Name:   "status",
						Usage:  "list pending migrations",
						Flags:  []cli.Flag{pathFlag},
						Action: runMigrateStatus,
					},
				},
			},
			{
				Name:   "fresh",
				Usage:  "drop the schema and re-apply migrations (development only)",
				Flags:  []cli.Flag{pathFlag},
				Action: runFresh,
			},
			{
				Name:  "items",
				Usage: "read and change the remote inventory",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "fetch and print the collection",
						Action: runItemsList,
					},
					{
						Name:  "add",
						Usage: "add an item, then print the refreshed collection",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "name", Required: true},
							&cli.StringFlag{Name: "price", Required: true},
							&cli.StringFlag{Name: "stock", Required: true},
						},
						Action: runItemsAdd,
					},
					{
						Name:  "delete",
						Usage: "delete an item by id, then print the refreshed collection",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "id", Required: true},
						},
						Action: runItemsDelete,
					},
				},
			},
		},
	}
}

type env struct {
	cfg config.Config
	log *logrus.Logger
}

func loadEnv() (env, error) {
	cfg, err := config.Load()
	if err != nil {
		return env{}, fmt.Errorf("config: %w", err)
	}
	return env{cfg: cfg, log: logging.New(cfg)}, nil
}

func (e env) connect(ctx context.Context) (*pgxpool.Pool, error) {
	if !e.cfg.Database.Enabled() {
		return nil, errors.New("DATABASE_URL is not set")
	}
	return postgres.Connect(ctx, e.cfg.Database)
}

func runMigrate(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(c.Context, 5*time.Minute)
	defer cancel()

	e, err := loadEnv()
	if err != nil {
		return err
	}
	fsys, err := migrationsFS(c.String("path"))
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	pool, err := e.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	applied, err := postgres.NewMigrator(pool, e.log).Apply(ctx, fsys)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if len(applied) == 0 {
		fmt.Fprintln(c.App.Writer, "migrate: no migrations applied")
	}
	return nil
}

func runMigrateStatus(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(c.Context, time.Minute)
	defer cancel()

	e, err := loadEnv()
	if err != nil {
		return err
	}
	fsys, err := migrationsFS(c.String("path"))
	if err != nil {
		return fmt.Errorf("migrate status: %w", err)
	}
	pool, err := e.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	m := postgres.NewMigrator(pool, e.log)
	if err := m.EnsureTable(ctx); err != nil {
		return fmt.Errorf("migrate status: %w", err)
	}
	pending, err := m.Pending(ctx, fsys)
	if err != nil {
		return fmt.Errorf("migrate status: %w", err)
	}
	if len(pending) == 0 {
		fmt.Fprintln(c.App.Writer, "up to date")
		return nil
	}
	for _, mig := range pending {
		fmt.Fprintf(c.App.Writer, "pending %s\n", mig.Name)
	}
	return nil
}

func runFresh(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(c.Context, 5*time.Minute)
	defer cancel()

	e, err := loadEnv()
	if err != nil {
		return err
	}
	if e.cfg.AppEnv != "development" {
		return fmt.Errorf("fresh: APP_ENV must be development (got %q)", e.cfg.AppEnv)
	}
	fsys, err := migrationsFS(c.String("path"))
	if err != nil {
		return fmt.Errorf("fresh: %w", err)
	}
	pool, err := e.connect(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.ResetSchema(ctx, pool); err != nil {
		return fmt.Errorf("fresh: %w", err)
	}
	if _, err := postgres.NewMigrator(pool, e.log).Apply(ctx, fsys); err != nil {
		return fmt.Errorf("fresh: %w", err)
	}
	return nil
}

// newView builds the same view the web server uses, journaling to the
// database when one is configured.
func newView(ctx context.Context, e env) (*inventory.View, func(), error) {
	opts := inventory.OptionsFromConfig(e.cfg.Inventory)
	opts.Logger = e.log
	closeFn := func() {}

	if e.cfg.Database.Enabled() {
		pool, err := postgres.Connect(ctx, e.cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		opts.Journal = postgres.NewMutationJournal(pool)
		closeFn = pool.Close
	}
	return inventory.NewView(remote.FromConfig(e.cfg.Inventory), opts), closeFn, nil
}

func runItemsList(c *cli.Context) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	view, closeFn, err := newView(c.Context, e)
	if err != nil {
		return err
	}
	defer closeFn()

	if err := view.Refresh(c.Context); err != nil {
		return fmt.Errorf("list items: %w", err)
	}
	return printItems(c.App.Writer, view.Items())
}

func runItemsAdd(c *cli.Context) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	view, closeFn, err := newView(c.Context, e)
	if err != nil {
		return err
	}
	defer closeFn()

	res := view.SubmitForm(c.Context, map[string][]string{
		"name":  {c.String("name")},
		"price": {c.String("price")},
		"stock": {c.String("stock")},
	})
	return finishMutation(c.App.Writer, view, res)
}

func runItemsDelete(c *cli.Context) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	id, err := inventory.ParseItemID(c.String("id"))
	if err != nil {
		return err
	}
	view, closeFn, err := newView(c.Context, e)
	if err != nil {
		return err
	}
	defer closeFn()

	return finishMutation(c.App.Writer, view, view.Delete(c.Context, id))
}

func finishMutation(w io.Writer, view *inventory.View, res inventory.MutationResult) error {
	if !res.Succeeded() {
		return fmt.Errorf("%s: %w", res.Kind, res.Err)
	}
	if res.RefetchErr != nil {
		return fmt.Errorf("%s succeeded but refresh failed: %w", res.Kind, res.RefetchErr)
	}
	return printItems(w, view.Items())
}

func printItems(w io.Writer, items []inventory.Item) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tSTOCK")
	for _, item := range items {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\n", item.ID, item.Name, item.Price, item.Stock)
	}
	return tw.Flush()
}

// migrationsFS picks the on-disk directory when it exists and falls back
// to the embedded bundle when the default directory is absent.
func migrationsFS(path string) (fs.FS, error) {
	if path == "" {
		return dbembed.Migrations(), nil
	}

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return nil, fmt.Errorf("path %q is not a directory", path)
		}
		return os.DirFS(path), nil
	case errors.Is(err, os.ErrNotExist):
		if path == defaultMigrationsDir {
			return dbembed.Migrations(), nil
		}
		return nil, fmt.Errorf("path %q not found", path)
	default:
		return nil, fmt.Errorf("stat path %q: %w", path, err)
	}
}

// Command migrate keeps the migrations directory's integrity file current and
// applies pending migrations with the atlas CLI.
//
//	migrate hash    rewrite migrations/atlas.sum
//	migrate status  show applied and pending versions
//	migrate apply   apply pending migrations
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"rental-engine/internal/handler/middleware"
	"rental-engine/internal/pkg/config"
	"rental-engine/internal/pkg/errs"

	"ariga.io/atlas-go-sdk/atlasexec"
	"ariga.io/atlas/sql/migrate"
)

const commandTimeout = 5 * time.Minute

func main() {
	dir := flag.String("dir", "migrations", "migrations directory")
	atlasBin := flag.String("atlas", "atlas", "path to the atlas binary")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: migrate [flags] hash|status|apply\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var err error
	switch flag.Arg(0) {
	case "hash":
		err = hash(*dir)
	case "status", "apply":
		err = runAtlas(ctx, flag.Arg(0), *dir, *atlasBin)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		slog.Error("Migration command failed", "command", flag.Arg(0), "error", err.Error())
		os.Exit(1)
	}
}

func hash(dir string) error {
	local, err := migrate.NewLocalDir(dir)
	if err != nil {
		return errs.Wrapf(err, "open %s", dir)
	}
	sum, err := local.Checksum()
	if err != nil {
		return errs.Wrap(err, "compute checksum")
	}
	if err := migrate.WriteSumFile(local, sum); err != nil {
		return errs.Wrap(err, "write atlas.sum")
	}
	slog.Info("Wrote atlas.sum", "dir", dir, "files", len(sum))
	return nil
}

func runAtlas(ctx context.Context, command, dir, atlasBin string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	middleware.NewLogger(cfg.Log)

	local, err := migrate.NewLocalDir(dir)
	if err != nil {
		return errs.Wrapf(err, "open %s", dir)
	}
	// Refuse to run against a directory edited without re-hashing.
	if err := migrate.Validate(local); err != nil {
		return errs.Wrap(err, "migrations directory is out of sync with atlas.sum; run `migrate hash`")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return errs.Wrap(err, "resolve migrations directory")
	}
	client, err := atlasexec.NewClient(".", atlasBin)
	if err != nil {
		return errs.Wrap(err, "atlas client")
	}
	dirURL := "file://" + abs
	dbURL := cfg.DB.BuildDSN()

	if command == "status" {
		st, err := client.MigrateStatus(ctx, &atlasexec.MigrateStatusParams{URL: dbURL, DirURL: dirURL})
		if err != nil {
			return errs.Wrap(err, "migrate status")
		}
		slog.Info("Migration status",
			"status", st.Status,
			"current", st.Current,
			"next", st.Next,
			"pending", len(st.Pending))
		return nil
	}

	res, err := client.MigrateApply(ctx, &atlasexec.MigrateApplyParams{URL: dbURL, DirURL: dirURL})
	if err != nil {
		return errs.Wrap(err, "migrate apply")
	}
	for _, f := range res.Applied {
		slog.Info("Applied migration", "version", f.Version, "name", f.Name)
	}
	slog.Info("Database is up to date", "current", res.Target, "applied", len(res.Applied))
	return nil
}

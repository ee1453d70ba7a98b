// Command migrator applies the Postgres schema with goose. Migrations are
// embedded in the binary; -dir reads them from disk instead.
package main

import (
	"database/sql"
	"flag"
	"io/fs"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quizforge/packadmin/db/migrations"
	"github.com/quizforge/packadmin/internal/config"
)

func main() {
	command := flag.String("command", "up", "goose command: up, down, status or version")
	dir := flag.String("dir", "", "read migrations from this directory instead of the embedded set")
	flag.Parse()

	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Str("cmd", "migrator").Logger()

	pg, err := config.LoadPostgres()
	if err != nil {
		log.Fatal().Err(err).Msg("load postgres config")
	}

	db, err := sql.Open("pgx", pg.DSN())
	if err != nil {
		log.Fatal().Err(err).Str("host", pg.Host).Int("port", pg.Port).Msg("open database")
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Str("host", pg.Host).Msg("ping database")
	}

	var source fs.FS = migrations.FS
	if *dir != "" {
		source = os.DirFS(*dir)
	}
	goose.SetBaseFS(source)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal().Err(err).Msg("set goose dialect")
	}

	log.Info().Str("database", pg.Database).Str("command", *command).Bool("embedded", *dir == "").Msg("running migrations")

	if err := run(db, *command); err != nil {
		log.Fatal().Err(err).Str("command", *command).Msg("migration failed")
	}
}

func run(db *sql.DB, command string) error {
	switch command {
	case "up":
		return goose.Up(db, ".")
	case "down":
		return goose.Down(db, ".")
	case "status":
		return goose.Status(db, ".")
	case "version":
		return goose.Version(db, ".")
	default:
		log.Fatal().Str("command", command).Msg("unknown command (want up, down, status or version)")
		return nil
	}
}

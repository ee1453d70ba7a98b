// Command adminpass prints a bcrypt hash for ADMIN_PASSWORD_HASH. The
// password is read from the first line of stdin.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quizforge/packadmin/internal/auth"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		log.Fatal().Err(err).Msg("read password from stdin")
	}

	hash, err := auth.HashPassword(strings.TrimRight(line, "\r\n"))
	if err != nil {
		log.Fatal().Err(err).Msg("hash password")
	}
	fmt.Println(hash)
}

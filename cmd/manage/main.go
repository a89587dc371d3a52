package main

import (
	"os"

	"github.com/rs/zerolog/log"

	"fasplanners/internal/database"
	"fasplanners/internal/notify"
)

func main() {
	a := &app{open: database.Open, newNotifier: notify.New}
	root := newRootCmd(a)

	err := root.Execute()
	a.close()
	if err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

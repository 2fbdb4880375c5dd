package main

import (
	"os"

	_ "time/tzdata"

	"github.com/yigit/fneseed/internal/pkg/logger"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Error().Err(err).Msg("Seeder failed")
		os.Exit(1)
	}
}

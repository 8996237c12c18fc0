// Command server runs the dictionary lookup HTTP API.
//
// Configuration comes from CONFIG_PATH (or ./config.yaml) plus environment
// variables; see internal/config. Exit codes: 0 = clean shutdown, 1 = error.
package main

import (
	"context"
	"log"

	"github.com/miyabiro/kotoba-backend/internal/app"
)

func main() {
	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("server: %v", err)
	}
}

package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/dmitrijs2005/sealvault/internal/admin"
)

func main() {
	if err := admin.Run(os.Args[1:], os.Stdout, os.Stderr, os.Getenv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		log.Fatalf("%v", err)
	}
}

package main

import (
	"log"
	"os"

	"github.com/fedragon/rawrename/internal/app"
)

func main() {
	if err := app.New().Run(os.Args); err != nil {
		log.Fatalf(err.Error())
	}
}

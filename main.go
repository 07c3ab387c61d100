package main

import (
	"os"

	"github.com/importdesk/importdesk/app"
)

func main() {
	err := app.Execute()
	if err != nil {
		os.Exit(1)
	}
}

package main

import (
	"os"

	_ "go.uber.org/automaxprocs"

	"github.com/zeek-r/go-reqlogger/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}

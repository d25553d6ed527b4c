package main

import (
	"os"

	"cfbranker.dev/cfb/internal/echo"
)

func main() {
	if err := RootCmd.Execute(); err != nil {
		echo.Error(err.Error())
		os.Exit(1)
	}
}

package main

import (
	"errors"
	"fmt"
	"os"
)

var errRequiredFlag = errors.New("missing required flag")

func main() {
	Execute()
}

func fatal(msg string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", msg, err)
	os.Exit(1)
}

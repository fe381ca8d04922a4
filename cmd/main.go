// @title        Water Tank Interlock API
// @version      1.0
// @description  Tank level simulation with night lockout and auto cut-off interlocks.
// @BasePath     /
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

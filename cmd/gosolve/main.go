// Command gosolve solves single-unknown equations from the command line.
//
// Usage:
//
//	gosolve solve "P*V = n*8.3145*T" --set P=101325 --set V=0.0224 --set n=1
//	gosolve eval "2+3*4"
//	gosolve check "2+3*4 = 14"
//	gosolve ideal-gas --set P=101325 --set V=0.0224 --set T=273.15
//	gosolve serve --config gosolve.yaml
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		var r reported
		if !errors.As(err, &r) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

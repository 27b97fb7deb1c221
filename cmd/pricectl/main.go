// pricectl is the operator CLI for the brand price catalog.
//
// Usage:
//
//	pricectl resolve --date 2020-06-14T16:00:00 --product 35455 --brand 1
//	pricectl list
//	pricectl seed
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Package main provides the Strand CLI.
package main

import (
	"flag"
	"fmt"
	"os"

	"k8s.io/klog/v2"

	"github.com/strand-hpc/strand/internal/device"

	// Register the built-in device adapters.
	_ "github.com/strand-hpc/strand/internal/backend/pool"
	_ "github.com/strand-hpc/strand/internal/backend/serial"
)

const version = "v0.0.1-dev"

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if flag.NArg() > 0 {
		switch flag.Arg(0) {
		case "version":
			fmt.Printf("Strand %s\n", version)
			return
		case "devices":
			for _, name := range device.Registered() {
				fmt.Println(name)
			}
			return
		default:
			fmt.Fprintf(os.Stderr, "unknown command %q\n", flag.Arg(0))
			os.Exit(2)
		}
	}

	fmt.Println("Strand - device-portable arrays for Go")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  devices    List registered device adapters")
}

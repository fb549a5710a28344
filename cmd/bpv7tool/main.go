// SPDX-FileCopyrightText: 2020, 2021, 2022 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
)

// printFatal logs err with a message and exits with a non-zero status.
func printFatal(err error, msg string) {
	log.WithError(err).Fatal(msg)
}

// printUsage of bpv7tool and exit with an error code afterwards.
func printUsage() {
	_, _ = fmt.Fprintf(os.Stderr, "Usage of %s create|show|sign|verify:\n\n", os.Args[0])

	_, _ = fmt.Fprintf(os.Stderr, "%s create sender receiver -|filename [bundle-name]\n", os.Args[0])
	_, _ = fmt.Fprintf(os.Stderr, "  Creates a new Bundle, addressed from sender to receiver, with the stdin (-) or\n")
	_, _ = fmt.Fprintf(os.Stderr, "  the given file (filename) as payload. Written to bundle-name, or a name\n")
	_, _ = fmt.Fprintf(os.Stderr, "  derived from the Bundle ID if omitted.\n\n")

	_, _ = fmt.Fprintf(os.Stderr, "%s show -|filename\n", os.Args[0])
	_, _ = fmt.Fprintf(os.Stderr, "  Prints a human-readable JSON representation of the given Bundle.\n\n")

	_, _ = fmt.Fprintf(os.Stderr, "%s sign -|input keyring.toml key-name -|output\n", os.Args[0])
	_, _ = fmt.Fprintf(os.Stderr, "  Attaches a Block Integrity Block over the payload block, keyed by key-name\n")
	_, _ = fmt.Fprintf(os.Stderr, "  as looked up in keyring.toml.\n\n")

	_, _ = fmt.Fprintf(os.Stderr, "%s verify -|input keyring.toml key-name\n", os.Args[0])
	_, _ = fmt.Fprintf(os.Stderr, "  Verifies a Bundle's Block Integrity Block, keyed by key-name as looked up\n")
	_, _ = fmt.Fprintf(os.Stderr, "  in keyring.toml. Exits non-zero on a mismatch.\n\n")

	os.Exit(1)
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
	}

	switch os.Args[1] {
	case "create":
		createBundle(os.Args[2:])

	case "show":
		showBundle(os.Args[2:])

	case "sign":
		signBundle(os.Args[2:])

	case "verify":
		verifyBundle(os.Args[2:])

	default:
		printUsage()
	}
}

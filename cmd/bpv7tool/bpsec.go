// SPDX-FileCopyrightText: 2022 Matthias Axel Kröll
// SPDX-FileCopyrightText: 2022 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/dtn7/bpsec7/bpv7"
)

// signBundle for the "sign" CLI option.
func signBundle(args []string) {
	if len(args) != 4 {
		printUsage()
	}

	var (
		input       = args[0]
		keyringToml = args[1]
		keyName     = args[2]
		output      = args[3]

		err error
		f   io.ReadCloser
		b   bpv7.Bundle
	)

	secret, err := loadKey(keyringToml, keyName)
	if err != nil {
		printFatal(err, "Loading key erred")
	}

	if input == "-" {
		f = os.Stdin
	} else if f, err = os.Open(input); err != nil {
		printFatal(err, "Opening file for reading erred")
	}

	if err = b.UnmarshalCbor(f); err != nil {
		printFatal(err, "Unmarshaling Bundle erred")
	}
	if err = f.Close(); err != nil {
		printFatal(err, "Closing file erred")
	}

	payloadBlock, err := b.PayloadBlock()
	if err != nil {
		printFatal(err, "Bundle has no payload block")
	}

	shaVariant := bpv7.HMAC384SHA384
	bib := bpv7.NewBIBIOPHMACSHA2(&shaVariant, nil, nil, []uint64{payloadBlock.BlockNumber}, b.PrimaryBlock.SourceNode)

	eb := bpv7.NewCanonicalBlock(0, 0, bib)
	if err = b.AddExtensionBlock(eb); err != nil {
		printFatal(err, "Adding Block Integrity Block erred")
	}

	bibBlockAdded, err := b.ExtensionBlock(bib.BlockTypeCode())
	if err != nil {
		printFatal(err, "Looking up freshly added Block Integrity Block erred")
	}

	if err = bibBlockAdded.Value.(*bpv7.BIBIOPHMACSHA2).Seal(b, bibBlockAdded.BlockNumber, secret); err != nil {
		printFatal(err, "Sealing Block Integrity Block erred")
	}

	logger := log.WithFields(log.Fields{
		"bundle": b.ID(),
		"key":    keyName,
	})

	var out io.WriteCloser
	if output == "-" {
		out = os.Stdout
	} else if out, err = os.Create(output); err != nil {
		logger.WithError(err).Fatal("Creating output file erred")
	}

	if err = b.MarshalCbor(out); err != nil {
		logger.WithError(err).Fatal("Marshalling Bundle erred")
	} else if err = out.Close(); err != nil {
		logger.WithError(err).Fatal("Closing output file erred")
	}
}

// verifyBundle for the "verify" CLI option.
func verifyBundle(args []string) {
	if len(args) != 3 {
		printUsage()
	}

	var (
		input       = args[0]
		keyringToml = args[1]
		keyName     = args[2]

		err error
		f   io.ReadCloser
		b   bpv7.Bundle
	)

	secret, err := loadKey(keyringToml, keyName)
	if err != nil {
		printFatal(err, "Loading key erred")
	}

	if input == "-" {
		f = os.Stdin
	} else if f, err = os.Open(input); err != nil {
		printFatal(err, "Opening file for reading erred")
	}

	if err = b.UnmarshalCbor(f); err != nil {
		printFatal(err, "Unmarshaling Bundle erred")
	}
	if err = f.Close(); err != nil {
		printFatal(err, "Closing file erred")
	}

	bibBlock, err := b.ExtensionBlock(bpv7.ExtBlockTypeBlockIntegrityBlock)
	if err != nil {
		printFatal(err, "Bundle has no Block Integrity Block")
	}

	if err = bibBlock.Value.(*bpv7.BIBIOPHMACSHA2).Verify(b, bibBlock.BlockNumber, secret); err != nil {
		printFatal(err, "Verification failed")
	}

	log.WithField("bundle", b.ID()).Info("Verify OK")
}

// SPDX-FileCopyrightText: 2020 Matthias Axel Kröll
// SPDX-FileCopyrightText: 2020 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bpv7

import (
	"bytes"
	"testing"
	"time"

	"github.com/dtn7/cboring"
)

func TestBIBIOPHMACSHA2SealAndVerify(t *testing.T) {
	b, bErr := Builder().
		CRC(CRC32).
		Source("dtn://src/").
		Destination("dtn://dst/").
		CreationTimestampNow().
		Lifetime(30 * time.Minute).
		PayloadBlock([]byte("hello world")).
		Build()
	if bErr != nil {
		t.Fatal(bErr)
	}

	privateKey := "dtnislove"

	payloadSecurityTarget, _ := b.ExtensionBlock(ExtBlockTypePayloadBlock)

	securityTargets := []uint64{payloadSecurityTarget.BlockNumber}

	shaVariant := HMAC256SHA256

	bib := NewBIBIOPHMACSHA2(&shaVariant, nil, nil, securityTargets, b.PrimaryBlock.SourceNode)

	eb := CanonicalBlock{
		BlockNumber:       0,
		BlockControlFlags: 0,
		CRCType:           CRCNo,
		CRC:               nil,
		Value:             bib,
	}

	if err := b.AddExtensionBlock(eb); err != nil {
		t.Fatal(err)
	}

	bibBlockAdded, _ := b.ExtensionBlock(bib.BlockTypeCode())

	if err := bibBlockAdded.Value.(*BIBIOPHMACSHA2).Seal(b, bibBlockAdded.BlockNumber, []byte(privateKey)); err != nil {
		t.Fatal(err)
	}

	buff := new(bytes.Buffer)
	if err := cboring.Marshal(&b, buff); err != nil {
		t.Fatal(err)
	}

	var b2 Bundle
	if err := cboring.Unmarshal(&b2, bytes.NewReader(buff.Bytes())); err != nil {
		t.Fatal(err)
	}

	bibBlockRoundtripped, err := b2.ExtensionBlock(ExtBlockTypeBlockIntegrityBlock)
	if err != nil {
		t.Fatal(err)
	}

	if err := bibBlockRoundtripped.Value.(*BIBIOPHMACSHA2).Verify(b2, bibBlockRoundtripped.BlockNumber, []byte(privateKey)); err != nil {
		t.Fatal(err)
	}
}

func TestBIBIOPHMACSHA2VerifyWrongKeyFails(t *testing.T) {
	b, bErr := Builder().
		CRC(CRC32).
		Source("dtn://src/").
		Destination("dtn://dst/").
		CreationTimestampNow().
		Lifetime(30 * time.Minute).
		PayloadBlock([]byte("hello world")).
		Build()
	if bErr != nil {
		t.Fatal(bErr)
	}

	payloadSecurityTarget, _ := b.ExtensionBlock(ExtBlockTypePayloadBlock)
	securityTargets := []uint64{payloadSecurityTarget.BlockNumber}

	bib := NewBIBIOPHMACSHA2(nil, nil, nil, securityTargets, b.PrimaryBlock.SourceNode)

	eb := CanonicalBlock{CRCType: CRCNo, Value: bib}
	if err := b.AddExtensionBlock(eb); err != nil {
		t.Fatal(err)
	}

	bibBlockAdded, _ := b.ExtensionBlock(bib.BlockTypeCode())

	if err := bibBlockAdded.Value.(*BIBIOPHMACSHA2).Seal(b, bibBlockAdded.BlockNumber, []byte("correct horse")); err != nil {
		t.Fatal(err)
	}

	err := bibBlockAdded.Value.(*BIBIOPHMACSHA2).Verify(b, bibBlockAdded.BlockNumber, []byte("wrong key"))
	if err == nil {
		t.Fatal("expected verification failure for wrong key")
	}
}

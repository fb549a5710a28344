// SPDX-FileCopyrightText: 2019, 2020, 2022 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bpv7

import (
	"bytes"
	"reflect"
	"testing"
	"time"
)

func TestBundleBuilderSimple(t *testing.T) {
	bndl, err := Builder().
		CRC(CRC32).
		Source("dtn://myself/").
		Destination("dtn://dest/").
		CreationTimestampEpoch().
		Lifetime("10m").
		HopCountBlock(64).
		BundleAgeBlock(0).
		PayloadBlock([]byte("hello world!")).
		Build()
	if err != nil {
		t.Fatalf("Builder erred: %v", err)
	}

	buff := new(bytes.Buffer)
	if err := bndl.MarshalCbor(buff); err != nil {
		t.Fatal(err)
	}
	bndlCbor := buff.Bytes()

	bndl2 := Bundle{}
	if err = bndl2.UnmarshalCbor(buff); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(bndl, bndl2) {
		t.Fatalf("Bundle changed after serialization: %v, %v", bndl, bndl2)
	}

	bndl3, err := NewBundle(
		NewPrimaryBlock(
			0,
			MustNewEndpointID("dtn://dest/"),
			MustNewEndpointID("dtn://myself/"),
			NewCreationTimestamp(DtnTimeEpoch, 0),
			1000*60*10),
		[]CanonicalBlock{
			NewCanonicalBlock(2, 0, NewHopCountBlock(64)),
			NewCanonicalBlock(3, 0, NewBundleAgeBlock(0)),
			NewCanonicalBlock(1, 0, NewPayloadBlock([]byte("hello world!")))})
	if err != nil {
		t.Fatal(err)
	}

	buff.Reset()
	bndl3.PrimaryBlock.ReportTo = bndl3.PrimaryBlock.SourceNode
	bndl3.SetCRCType(CRC32)

	if err := bndl3.MarshalCbor(buff); err != nil {
		t.Fatal(err)
	}
	bndl3Cbor := buff.Bytes()

	if !bytes.Equal(bndlCbor, bndl3Cbor) {
		t.Fatalf("CBOR has changed:\n%x\n%x", bndlCbor, bndl3Cbor)
	}

	if !reflect.DeepEqual(bndl, bndl3) {
		t.Fatalf("Bundles differ: %v, %v", bndl, bndl3)
	}
}

func TestBundleBuilderMissingSourceOrDestination(t *testing.T) {
	if _, err := Builder().
		Destination("dtn://dest/").
		CreationTimestampEpoch().
		Lifetime("10m").
		PayloadBlock([]byte("hello world!")).
		Build(); err == nil {
		t.Fatal("expected an error for a missing source")
	}
}

func TestBundleBuilderCtrlFlags(t *testing.T) {
	bndl, err := Builder().
		CRC(CRC32).
		Source("dtn://myself/").
		Destination("dtn://dest/").
		BundleCtrlFlags(StatusRequestDelivery).
		CreationTimestampNow().
		Lifetime(time.Hour).
		PayloadBlock([]byte("hello world!")).
		Build()
	if err != nil {
		t.Fatal(err)
	}

	if !bndl.PrimaryBlock.BundleControlFlags.Has(StatusRequestDelivery) {
		t.Fatal("BundleCtrlFlags was not applied to the primary block")
	}
}

func TestBldrParseEndpoint(t *testing.T) {
	eidIn, _ := NewEndpointID("dtn://foo/bar/")
	if eidTmp, _ := bldrParseEndpoint(eidIn); eidTmp != eidIn {
		t.Fatalf("Endpoint does not match: %v != %v", eidTmp, eidIn)
	}

	if eidTmp, _ := bldrParseEndpoint("dtn://foo/bar/"); eidTmp != eidIn {
		t.Fatalf("Parsed endpoint does not match: %v != %v", eidTmp, eidIn)
	}

	if _, errTmp := bldrParseEndpoint(23.42); errTmp == nil {
		t.Fatal("Invalid endpoint type did not result in an error")
	}
}

func TestBldrParseLifetime(t *testing.T) {
	tests := []struct {
		val interface{}
		ms  uint64
		err bool
	}{
		{1000, 1000, false},
		{uint64(1000), 1000, false},
		{"1000ms", 1000, false},
		{"1000us", 1, false},
		{"1000s", 1000000, false},
		{"1s", 1000, false},
		{"1m", 60000, false},
		{time.Millisecond, 1, false},
		{time.Second, 1000, false},
		{time.Minute, 60000, false},
		{10 * time.Minute, 600000, false},
		{-23, 0, true},
		{"-10m", 0, true},
		{true, 0, true},
	}

	for _, test := range tests {
		ms, err := bldrParseLifetime(test.val)

		if test.err == (err == nil) {
			t.Fatalf("Error value for %v was unexpected: %v != %v",
				test.val, test.err, err)
		}

		if test.ms != ms {
			t.Fatalf("Value for %v was unexpected: %v != %v", test.val, test.ms, ms)
		}
	}
}

// SPDX-FileCopyrightText: 2022 Matthias Axel Kröll
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bpv7

import (
	"bytes"
	"errors"
	"testing"
)

// buildScenarioBundle constructs the reference bundle used across S1-S4: a two-hop bundle with a zero creation
// timestamp, a one-hour lifetime, no Bundle Age block, and a two-byte payload.
func buildScenarioBundle(t *testing.T) Bundle {
	t.Helper()

	pb := NewPrimaryBlock(
		0,
		MustNewEndpointID("dtn://node2/inbox"),
		MustNewEndpointID("dtn://node1/out"),
		NewCreationTimestamp(DtnTimeEpoch, 0),
		3_600_000)
	pb.ReportTo = DtnNone()
	pb.SetCRCType(CRC32) // recompute the CRC after changing ReportTo

	b, err := NewBundle(pb, []CanonicalBlock{
		NewCanonicalBlock(1, 0, NewPayloadBlock([]byte{0x48, 0x69})),
	})
	if err != nil {
		t.Fatalf("scenario bundle failed to validate: %v", err)
	}

	b.SetCRCType(CRC32)

	return b
}

// S1: a zero-timestamp bundle with no Bundle Age block and an hour-long lifetime validates successfully, and its
// payload round-trips unchanged.
func TestScenarioS1CreateAndValidate(t *testing.T) {
	b := buildScenarioBundle(t)

	if err := b.CheckValid(); err != nil {
		t.Fatalf("expected bundle to validate, got: %v", err)
	}

	payload, err := b.PayloadBlock()
	if err != nil {
		t.Fatalf("PayloadBlock: %v", err)
	}

	data := payload.Value.(*PayloadBlock).Data()
	if !bytes.Equal(data, []byte{0x48, 0x69}) {
		t.Fatalf("payload mismatch: %x", data)
	}
}

// S2: corrupting a byte of the encoded payload block must surface as a CRC mismatch on decode.
func TestScenarioS2CorruptedPayloadCRCMismatch(t *testing.T) {
	b := buildScenarioBundle(t)

	var buf bytes.Buffer
	if err := b.MarshalCbor(&buf); err != nil {
		t.Fatalf("MarshalCbor: %v", err)
	}
	encoded := buf.Bytes()

	// The payload's last byte, 0x69, is the last 0x69 in the encoding (the "i" of the primary block's
	// "dtn://node2/inbox" comes earlier, and the payload block's CRC holds none); flipping it to 0x00
	// invalidates the payload block's CRC without touching its length-prefixed CBOR framing.
	idx := bytes.LastIndexByte(encoded, 0x69)
	if idx < 0 {
		t.Fatal("could not locate payload byte to corrupt")
	}
	encoded[idx] = 0x00

	var decoded Bundle
	err := decoded.UnmarshalCbor(bytes.NewReader(encoded))
	if !errors.Is(err, ErrCRCMismatch) {
		t.Fatalf("expected crc mismatch, got: %v", err)
	}
}

// S3: sealing the payload block with BIB-HMAC-SHA2 and verifying with the same key succeeds, and produces a
// 48-byte (SHA-384) MAC.
func TestScenarioS3SealAndVerify(t *testing.T) {
	b := buildScenarioBundle(t)
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	shaVariant := HMAC384SHA384
	scopeFlags := uint16(0x7)
	bib := NewBIBIOPHMACSHA2(&shaVariant, nil, &scopeFlags, []uint64{1}, MustNewEndpointID("dtn://node1/out"))

	if err := b.AddExtensionBlock(NewCanonicalBlock(0, 0, bib)); err != nil {
		t.Fatalf("AddExtensionBlock: %v", err)
	}

	bibCb, err := b.ExtensionBlock(ExtBlockTypeBlockIntegrityBlock)
	if err != nil {
		t.Fatalf("ExtensionBlock: %v", err)
	}

	if err := bib.Seal(b, bibCb.BlockNumber, key); err != nil {
		t.Fatalf("Seal: %v", err)
	}

	if err := bib.Verify(b, bibCb.BlockNumber, key); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	mac := bib.Asb.SecurityResults[0].results[0].Value().([]byte)
	if len(mac) != 48 {
		t.Fatalf("expected a 48 byte SHA-384 MAC, got %d bytes", len(mac))
	}
}

// S4: once sealed, altering the primary block invalidates the MAC because the integrity scope flags cover the
// primary block's canonical form.
func TestScenarioS4TamperedPrimaryBlockIntegrityMismatch(t *testing.T) {
	b := buildScenarioBundle(t)
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}

	shaVariant := HMAC384SHA384
	scopeFlags := uint16(0x7)
	bib := NewBIBIOPHMACSHA2(&shaVariant, nil, &scopeFlags, []uint64{1}, MustNewEndpointID("dtn://node1/out"))

	if err := b.AddExtensionBlock(NewCanonicalBlock(0, 0, bib)); err != nil {
		t.Fatalf("AddExtensionBlock: %v", err)
	}

	bibCb, err := b.ExtensionBlock(ExtBlockTypeBlockIntegrityBlock)
	if err != nil {
		t.Fatalf("ExtensionBlock: %v", err)
	}

	if err := bib.Seal(b, bibCb.BlockNumber, key); err != nil {
		t.Fatalf("Seal: %v", err)
	}

	b.PrimaryBlock.Lifetime = 3_600_001

	if err := bib.Verify(b, bibCb.BlockNumber, key); !errors.Is(err, ErrIntegrityMismatch) {
		t.Fatalf("expected integrity mismatch, got: %v", err)
	}
}

// S5: two canonical blocks sharing a block number must be rejected as duplicates.
func TestScenarioS5DuplicateBlockNumber(t *testing.T) {
	b := MustNewBundle(
		NewPrimaryBlock(0, MustNewEndpointID("dtn://node2/inbox"), MustNewEndpointID("dtn://node1/out"),
			NewCreationTimestamp(DtnTimeEpoch, 0), 3_600_000),
		[]CanonicalBlock{
			NewCanonicalBlock(2, 0, NewHopCountBlock(32)),
			NewCanonicalBlock(2, 0, NewBundleAgeBlock(0)),
			NewCanonicalBlock(1, 0, NewPayloadBlock([]byte{0x48, 0x69})),
		})

	if err := b.CheckValid(); !errors.Is(err, ErrDuplicateBlockNumber) {
		t.Fatalf("expected duplicate block number error, got: %v", err)
	}
}

// S6: endpoint URI parsing across the "dtn" and "ipn" schemes, and rejection of malformed or unsupported URIs.
func TestScenarioS6EndpointParsing(t *testing.T) {
	tests := []struct {
		uri     string
		wantErr bool
	}{
		{"dtn:none", false},
		{"dtn://a/b", false},
		{"ipn:5.12", false},
		{"ipn:5", true},
		{"http://x", true},
	}

	for _, test := range tests {
		eid, err := NewEndpointID(test.uri)
		if test.wantErr {
			if err == nil {
				t.Errorf("%q: expected an error, got none", test.uri)
			}
			continue
		}

		if err != nil {
			t.Errorf("%q: unexpected error: %v", test.uri, err)
			continue
		}

		switch test.uri {
		case "dtn:none":
			dtn, ok := eid.EndpointType.(DtnEndpoint)
			if !ok || !dtn.IsDtnNone {
				t.Errorf("%q: expected the dtn:none endpoint, got %#v", test.uri, eid.EndpointType)
			}

		case "dtn://a/b":
			dtn, ok := eid.EndpointType.(DtnEndpoint)
			if !ok || dtn.NodeName != "a" || dtn.Demux != "b" {
				t.Errorf("%q: expected node %q demux %q, got %#v", test.uri, "a", "b", eid.EndpointType)
			}

		case "ipn:5.12":
			ipn, ok := eid.EndpointType.(IpnEndpoint)
			if !ok || ipn.Node != 5 || ipn.Service != 12 {
				t.Errorf("%q: expected node 5 service 12, got %#v", test.uri, eid.EndpointType)
			}
		}
	}
}

// SPDX-FileCopyrightText: 2020, 2022 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bpv7

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/dtn7/cboring"
)

const (
	dtnEndpointSchemeName string = "dtn"
	dtnEndpointSchemeNo   uint64 = 1
)

var dtnEndpointRegexp = regexp.MustCompile(`^dtn://(.+?)/(.*)$`)

// DtnEndpoint describes the "dtn" URI scheme for EndpointIDs, as defined in ietf-dtn-bpbis. Besides the null
// endpoint "dtn:none", a dtn URI addresses a node by name and, optionally, a demultiplexer string identifying an
// application or service on that node, e.g., "dtn://node/demux".
type DtnEndpoint struct {
	NodeName  string
	Demux     string
	IsDtnNone bool
}

// NewDtnEndpoint from an URI with the dtn scheme.
func NewDtnEndpoint(uri string) (EndpointType, error) {
	if uri == "dtn:none" {
		return DtnEndpoint{IsDtnNone: true}, nil
	}

	if !strings.HasPrefix(uri, "dtn://") {
		return nil, fmt.Errorf("DtnEndpoint: %q is missing the dtn:// prefix", uri)
	}

	submatches := dtnEndpointRegexp.FindStringSubmatch(uri)
	if len(submatches) != 3 {
		return nil, fmt.Errorf("DtnEndpoint: %q does not match a dtn endpoint's URI", uri)
	}

	e := DtnEndpoint{NodeName: submatches[1], Demux: submatches[2]}
	if err := e.CheckValid(); err != nil {
		return nil, err
	}

	return e, nil
}

// SchemeName is "dtn" for DtnEndpoints.
func (DtnEndpoint) SchemeName() string {
	return dtnEndpointSchemeName
}

// SchemeNo is 1 for DtnEndpoints.
func (DtnEndpoint) SchemeNo() uint64 {
	return dtnEndpointSchemeNo
}

// Authority is the authority part of the Endpoint URI, e.g., "foo" for "dtn://foo/bar".
func (e DtnEndpoint) Authority() string {
	if e.IsDtnNone {
		return "none"
	}

	return e.NodeName
}

// Path is the path part of the Endpoint URI, e.g., "/bar" for "dtn://foo/bar".
func (e DtnEndpoint) Path() string {
	if e.IsDtnNone || e.Demux == "" {
		return "/"
	}

	return "/" + e.Demux
}

// IsSingleton checks if this Endpoint represents a singleton. The null endpoint and any demultiplexer starting with
// a tilde ("~") describe a group of nodes instead of a single one.
func (e DtnEndpoint) IsSingleton() bool {
	if e.IsDtnNone {
		return false
	}

	return !strings.HasPrefix(e.Demux, "~")
}

// CheckValid returns an array of errors for incorrect data.
func (e DtnEndpoint) CheckValid() error {
	if e.IsDtnNone {
		return nil
	}

	if e.NodeName == "" {
		return fmt.Errorf("DtnEndpoint: node name must not be empty")
	}

	if !regexp.MustCompile(`^[a-zA-Z0-9._-]+$`).MatchString(e.NodeName) {
		return fmt.Errorf("DtnEndpoint: node name %q contains illegal characters", e.NodeName)
	}

	return nil
}

func (e DtnEndpoint) String() string {
	if e.IsDtnNone {
		return "dtn:none"
	}

	return fmt.Sprintf("dtn://%s/%s", e.NodeName, e.Demux)
}

// MarshalCbor writes this DtnEndpoint's CBOR representation: an unsigned integer 0 for the null endpoint, or a text
// string "//NodeName/Demux" otherwise.
func (e DtnEndpoint) MarshalCbor(w io.Writer) error {
	if e.IsDtnNone {
		return cboring.WriteUInt(0, w)
	}

	return cboring.WriteTextString(fmt.Sprintf("//%s/%s", e.NodeName, e.Demux), w)
}

// UnmarshalCbor reads a DtnEndpoint's CBOR representation.
func (e *DtnEndpoint) UnmarshalCbor(r io.Reader) error {
	m, n, err := cboring.ReadMajors(r)
	if err != nil {
		return err
	}

	switch m {
	case cboring.UInt:
		if n != 0 {
			return fmt.Errorf("DtnEndpoint: unsigned integer scheme-specific part must be 0, got %d", n)
		}
		e.IsDtnNone = true

	case cboring.TextString:
		data, err := cboring.ReadRawBytes(n, r)
		if err != nil {
			return err
		}

		ssp := string(data)
		submatches := regexp.MustCompile(`^//(.+?)/(.*)$`).FindStringSubmatch(ssp)
		if len(submatches) != 3 {
			return fmt.Errorf("DtnEndpoint: %q is not a valid scheme-specific part", ssp)
		}

		e.NodeName = submatches[1]
		e.Demux = submatches[2]

	default:
		return fmt.Errorf("DtnEndpoint: unexpected major type 0x%X while unmarshalling", m)
	}

	return nil
}

// DtnNone returns the null endpoint "dtn:none".
func DtnNone() EndpointID {
	return EndpointID{DtnEndpoint{IsDtnNone: true}}
}

// SPDX-FileCopyrightText: 2019, 2020, 2022 Alvar Penning
//
// SPDX-License-Identifier: GPL-3.0-or-later

package bpv7

import (
	"bytes"
	"encoding"
	"fmt"
	"io"
	"reflect"

	"github.com/dtn7/cboring"
)

// Block type codes for the canonical block types defined by this package, as registered with IANA.
const (
	ExtBlockTypePayloadBlock          uint64 = 1
	ExtBlockTypePreviousNodeBlock     uint64 = 6
	ExtBlockTypeBundleAgeBlock        uint64 = 7
	ExtBlockTypeHopCountBlock         uint64 = 10
	ExtBlockTypeBlockIntegrityBlock   uint64 = 11
	ExtBlockTypeBlockConfidentialityBlock uint64 = 12
)

// ExtensionBlock is a specific shape of a Canonical Block, i.e., the Payload Block or a more generic Extension
// Block.
type ExtensionBlock interface {
	Valid

	// BlockTypeCode must return a constant integer, indicating the block type code.
	BlockTypeCode() uint64

	// BlockTypeName must return a constant string, this block's name.
	BlockTypeName() string

	// CheckContextValid checks this block's validity in the context of its surrounding Bundle, e.g., to enforce
	// at-most-one-of-a-kind constraints.
	CheckContextValid(*Bundle) error
}

// ExtensionBlockManager keeps a book on various types of ExtensionBlocks that can be changed at runtime. Thus, new
// ExtensionBlocks can be created based on their block type code.
//
// A singleton ExtensionBlockManager can be fetched by GetExtensionBlockManager.
type ExtensionBlockManager struct {
	data map[uint64]reflect.Type
}

// NewExtensionBlockManager creates an empty ExtensionBlockManager. To use a singleton ExtensionBlockManager, use
// GetExtensionBlockManager.
func NewExtensionBlockManager() *ExtensionBlockManager {
	return &ExtensionBlockManager{data: make(map[uint64]reflect.Type)}
}

// Register a new ExtensionBlock type through an exemplary instance. A GenericExtensionBlock cannot be registered;
// it exists specifically to cover the types that are not.
func (ebm *ExtensionBlockManager) Register(eb ExtensionBlock) error {
	if _, isGeneric := eb.(*GenericExtensionBlock); isGeneric {
		return fmt.Errorf("GenericExtensionBlock must not be registered")
	}

	extCode := eb.BlockTypeCode()
	extType := reflect.TypeOf(eb).Elem()

	if otherType, exists := ebm.data[extCode]; exists {
		return fmt.Errorf("block type code %d is already registered for %s", extCode, otherType.Name())
	}

	ebm.data[extCode] = extType
	return nil
}

// Unregister an ExtensionBlock type through an exemplary instance.
func (ebm *ExtensionBlockManager) Unregister(eb ExtensionBlock) {
	delete(ebm.data, eb.BlockTypeCode())
}

// IsKnown returns true if an ExtensionBlock type is registered for this block type code.
func (ebm *ExtensionBlockManager) IsKnown(typeCode uint64) bool {
	_, known := ebm.data[typeCode]
	return known
}

// createBlock returns a fresh instance of the ExtensionBlock registered for the given block type code, or a
// GenericExtensionBlock if none is registered.
func (ebm *ExtensionBlockManager) createBlock(typeCode uint64) ExtensionBlock {
	extType, exists := ebm.data[typeCode]
	if !exists {
		return NewGenericExtensionBlock(nil, typeCode)
	}

	return reflect.New(extType).Interface().(ExtensionBlock)
}

// WriteBlock writes an ExtensionBlock's data, wrapped in a CBOR byte string, to some io.Writer.
//
// A block implementing encoding.BinaryMarshaler is written as-is within the byte string, e.g., the PayloadBlock.
// Everything else must implement cboring.CborMarshaler and is CBOR-encoded before being wrapped.
func (ebm *ExtensionBlockManager) WriteBlock(eb ExtensionBlock, w io.Writer) error {
	var data []byte

	switch v := eb.(type) {
	case encoding.BinaryMarshaler:
		d, err := v.MarshalBinary()
		if err != nil {
			return err
		}
		data = d

	case cboring.CborMarshaler:
		buff := new(bytes.Buffer)
		if err := v.MarshalCbor(buff); err != nil {
			return err
		}
		data = buff.Bytes()

	default:
		return fmt.Errorf("ExtensionBlock of type %T implements neither BinaryMarshaler nor CborMarshaler", eb)
	}

	return cboring.WriteByteString(data, w)
}

// ReadBlock reads a CBOR byte string from some io.Reader and unmarshals it into an ExtensionBlock for the given
// block type code, creating an unregistered type's stand-in via a GenericExtensionBlock.
func (ebm *ExtensionBlockManager) ReadBlock(typeCode uint64, r io.Reader) (ExtensionBlock, error) {
	data, err := cboring.ReadByteString(r)
	if err != nil {
		return nil, err
	}

	eb := ebm.createBlock(typeCode)

	switch v := eb.(type) {
	case encoding.BinaryUnmarshaler:
		if err := v.UnmarshalBinary(data); err != nil {
			return nil, err
		}

	case cboring.CborMarshaler:
		if err := v.UnmarshalCbor(bytes.NewReader(data)); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("ExtensionBlock of type %T implements neither BinaryUnmarshaler nor CborMarshaler", eb)
	}

	return eb, nil
}

// extensionBlockManager is the pointer to the singleton ExtensionBlockManager.
var extensionBlockManager *ExtensionBlockManager

// GetExtensionBlockManager returns the singleton ExtensionBlockManager. If none exists, a new one is created with
// knowledge of the PayloadBlock, PreviousNodeBlock, BundleAgeBlock, HopCountBlock and BIBIOPHMACSHA2.
func GetExtensionBlockManager() *ExtensionBlockManager {
	if extensionBlockManager == nil {
		extensionBlockManager = NewExtensionBlockManager()

		_ = extensionBlockManager.Register(NewPayloadBlock(nil))
		_ = extensionBlockManager.Register(NewPreviousNodeBlock(DtnNone()))
		_ = extensionBlockManager.Register(NewBundleAgeBlock(0))
		_ = extensionBlockManager.Register(NewHopCountBlock(0))
		_ = extensionBlockManager.Register(&BIBIOPHMACSHA2{})
	}

	return extensionBlockManager
}

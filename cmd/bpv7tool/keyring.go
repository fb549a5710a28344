// SPDX-FileCopyrightText: 2022 Matthias Axel Kröll
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// keyringConfig describes a TOML keyring file, mapping a human-readable name to a shared secret used for
// BIB-HMAC-SHA2 sealing and verification.
type keyringConfig struct {
	Key []keyEntry
}

// keyEntry describes a single [[key]] block within a keyringConfig.
type keyEntry struct {
	Name   string
	Secret string
}

// loadKey reads a keyring TOML file and returns the secret registered under name.
func loadKey(filename, name string) ([]byte, error) {
	var conf keyringConfig
	if _, err := toml.DecodeFile(filename, &conf); err != nil {
		return nil, fmt.Errorf("decoding keyring %s: %v", filename, err)
	}

	for _, k := range conf.Key {
		if k.Name == name {
			return []byte(k.Secret), nil
		}
	}

	return nil, fmt.Errorf("no key named %q in keyring %s", name, filename)
}

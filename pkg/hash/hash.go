// Copyright 2025 kre8ntemjs project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package hash provides content hashing used for seed derivation and
// deterministic edge count computation.
package hash

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
)

type Sig [sha1.Size]byte

func Hash(pieces ...[]byte) Sig {
	h := sha1.New()
	for _, data := range pieces {
		h.Write(data)
	}
	var sig Sig
	copy(sig[:], h.Sum(nil))
	return sig
}

func String(pieces ...[]byte) string {
	sig := Hash(pieces...)
	return sig.String()
}

func (sig *Sig) String() string {
	return hex.EncodeToString((*sig)[:])
}

// Truncate64 returns the first 64 bits of the hash as int64.
func (sig *Sig) Truncate64() int64 {
	return int64(binary.LittleEndian.Uint64((*sig)[:8]))
}

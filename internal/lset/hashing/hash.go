// Package hashing provides the bucket-selection primitive used by the
// SubRecord and TopRecord layout drivers to route a key to one of Modulo
// buckets.
package hashing

import "hash/crc32"

// Hasher maps a key to a bucket index modulo m. The engine treats the hash
// as an external collaborator (spec: "hash primitive") exposed behind this
// one-method interface so a host can swap it out, mirroring how the
// database engine package in this module exposes its own string-to-uint64
// hook rather than hard-wiring a single hash function.
type Hasher interface {
	Bucket(key string, m uint32) uint32
}

// CRC32Hasher is the default Hasher, using the IEEE polynomial.
type CRC32Hasher struct{}

func (CRC32Hasher) Bucket(key string, m uint32) uint32 {
	if m == 0 {
		return 0
	}
	return crc32.ChecksumIEEE([]byte(key)) % m
}

// Default is the shipped Hasher instance.
var Default Hasher = CRC32Hasher{}

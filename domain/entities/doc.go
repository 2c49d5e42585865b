// Package entities holds the domain data shapes exchanged with the native
// layer. The native library speaks JSON strings for structured payloads;
// these types serve as both domain entities and that JSON wire format.
package entities

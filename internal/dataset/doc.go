// Package dataset loads, writes and generates the integer sequences that
// parsearch searches. Files hold integers separated by whitespace or commas,
// with '#' starting a comment line, and may be compressed with gzip, zstd or
// lz4, selected by file extension.
package dataset

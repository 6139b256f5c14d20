// Package wac converts Wildlife Acoustics WAC recordings into PCM WAV files.
//
// A WAC file is a 24 byte header, a seek table and a stream of blocks. Each
// block holds frames of Golomb-coded sample deltas, optionally preceded by a
// GPS fix and a button tag. The package exposes each stage separately:
//
//   - ParseHeader reads the header and seek table from a Reader.
//   - Decode reconstructs the interleaved samples into a PCMBuffer.
//   - Encoder writes integer PCM into a RIFF/WAVE stream.
//
// Converter ties the stages together and adds file handling: ConvertFile
// replaces the destination atomically and ConvertAll converts many files on a
// bounded worker pool.
//
// Failures caused by the source match ErrInvalidFormat, ErrUnsupportedVersion,
// ErrTruncatedInput or ErrCorruptFrame with errors.Is; failures of the
// destination match ErrSinkWrite.
package wac

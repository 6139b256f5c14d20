package wac

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
)

var (
	// See http://bwfmetaedit.sourceforge.net/listinfo.html
	markerINAM = [4]byte{'I', 'N', 'A', 'M'}
	markerISFT = [4]byte{'I', 'S', 'F', 'T'}
	markerICMT = [4]byte{'I', 'C', 'M', 'T'}
	markerICRD = [4]byte{'I', 'C', 'R', 'D'}
	markerIARL = [4]byte{'I', 'A', 'R', 'L'}
	markerIKEY = [4]byte{'I', 'K', 'E', 'Y'}
	markerISRC = [4]byte{'I', 'S', 'R', 'C'}

	// CIDList is the chunk ID for a LIST chunk.
	CIDList = [4]byte{'L', 'I', 'S', 'T'}
	// CIDInfo is the list type of an INFO list.
	CIDInfo = [4]byte{'I', 'N', 'F', 'O'}
)

// Software is written to the ISFT field.
const Software = "wac2wav"

// Metadata holds the LIST/INFO fields written after the audio data.
type Metadata struct {
	Title        string
	Software     string
	Comments     string
	CreationDate string
	Location     string
	Keywords     string
	Source       string
}

// NewMetadata describes a decoded recording: its format, the first GPS fix
// and the tag buttons pressed.
func NewMetadata(h *Header, ann Annotations) *Metadata {
	md := &Metadata{
		Software: Software,
		Source:   fmt.Sprintf("WAC v%d", h.Version),
	}

	comments := []string{
		fmt.Sprintf("%d Hz, %d ch, %d samples", h.SampleRate, h.NumChans, h.SampleCount),
	}

	if h.LossyBits() > 0 {
		comments = append(comments, fmt.Sprintf("lossy bits %d", h.LossyBits()))
	}

	if h.Triggered() {
		comments = append(comments, "triggered")
	}

	md.Comments = strings.Join(comments, "; ")

	if len(ann.GPS) > 0 {
		md.Location = ann.GPS[0].String()
	}

	if len(ann.Tags) > 0 {
		seen := map[string]bool{}

		var keys []string

		for _, t := range ann.Tags {
			key := "tag " + t.Label()
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}

		md.Keywords = strings.Join(keys, "; ")
	}

	return md
}

// encodeInfoChunk returns the LIST payload for md, or nil when md has no
// fields set.
func encodeInfoChunk(md *Metadata) []byte {
	if md == nil {
		return nil
	}

	buf := bytes.NewBuffer(nil)

	writeSection := func(id [4]byte, val string) {
		if val == "" {
			return
		}

		size := len(val) + 1
		buf.Write(id[:])
		binary.Write(buf, binary.LittleEndian, uint32(size))
		buf.WriteString(val)
		buf.WriteByte(0)

		if size%2 == 1 {
			buf.WriteByte(0)
		}
	}

	fields := []struct {
		marker [4]byte
		value  string
	}{
		{markerINAM, md.Title},
		{markerICMT, md.Comments},
		{markerICRD, md.CreationDate},
		{markerIKEY, md.Keywords},
		{markerISFT, md.Software},
		{markerISRC, md.Source},
		{markerIARL, md.Location},
	}

	for _, field := range fields {
		writeSection(field.marker, field.value)
	}

	if buf.Len() == 0 {
		return nil
	}

	return append(CIDInfo[:], buf.Bytes()...)
}

package dna

import (
	"sync"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
)

// FileType is the DNA entry registered with the filetype matcher registry.
var FileType = filetype.NewType("dna", "application/x-rig-dna")

var registerOnce sync.Once

// IsDNA reports whether buf starts with the DNA magic and a supported version.
func IsDNA(buf []byte) bool {
	if len(buf) < headerSize || string(buf[:4]) != Magic {
		return false
	}
	v := Version{
		Major: uint16(buf[4]) | uint16(buf[5])<<8,
		Minor: uint16(buf[6]) | uint16(buf[7])<<8,
	}
	return v.Supported()
}

// RegisterFileType adds the DNA matcher to the filetype registry so that
// filetype.Match recognizes DNA files. It is safe to call more than once.
func RegisterFileType() types.Type {
	registerOnce.Do(func() {
		filetype.AddMatcher(FileType, IsDNA)
	})
	return FileType
}

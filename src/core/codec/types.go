// Package codec decodes the compact, self-describing envelope an agent
// image is carried in: a header byte of major type (top 3 bits) plus
// additional info (bottom 5 bits), used here for exactly three things — a
// map of named byte strings, the byte strings themselves, and their text
// keys. It is not a general decoder for the format it resembles: anything
// outside the three major types and the one closed key set is rejected.
package codec

// ImageParts holds the three components unpacked from an agent image's
// envelope.
type ImageParts struct {
	Model []byte
	Prep  []byte
	Act   []byte
}

const (
	majorByteString = 2
	majorTextString = 3
	majorMap        = 5
)

// requiredKeyCount is the number of keys ("model", "prep", "act") every
// envelope must carry exactly once.
const requiredKeyCount = 3

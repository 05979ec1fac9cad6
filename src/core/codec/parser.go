package codec

import "encoding/binary"

// Parse decodes the compact envelope in data into its three named fields.
// fieldCap bounds each individual sub-buffer (the caller passes the slot's
// payload capacity); any decoded field longer than fieldCap fails with
// OversizedField and is not stored in the returned ImageParts.
func Parse(data []byte, fieldCap int) (ImageParts, error) {
	p := &cursor{data: data}

	major, count, err := p.header()
	if err != nil {
		return ImageParts{}, err
	}
	if major != majorMap {
		return ImageParts{}, newParseError(BadHeader, "")
	}

	var parts ImageParts
	seen := make(map[string]bool, requiredKeyCount)

	for i := uint64(0); i < count; i++ {
		key, err := p.textString()
		if err != nil {
			return ImageParts{}, err
		}

		if key != "model" && key != "prep" && key != "act" {
			return ImageParts{}, newParseError(BadHeader, key)
		}
		if seen[key] {
			return ImageParts{}, newParseError(DuplicateKey, key)
		}

		value, err := p.byteString()
		if err != nil {
			return ImageParts{}, err
		}
		if len(value) > fieldCap {
			return ImageParts{}, newParseError(OversizedField, key)
		}

		seen[key] = true
		switch key {
		case "model":
			parts.Model = value
		case "prep":
			parts.Prep = value
		case "act":
			parts.Act = value
		}
	}

	for _, key := range []string{"model", "prep", "act"} {
		if !seen[key] {
			return ImageParts{}, newParseError(MissingKey, key)
		}
	}

	return parts, nil
}

// cursor walks data one header/string at a time, tracking how far it has
// read without ever slicing past the end of the buffer.
type cursor struct {
	data   []byte
	offset int
}

// header reads one header byte plus its additional-info extension bytes and
// returns the decoded major type and value.
func (c *cursor) header() (majorType uint8, value uint64, err error) {
	if c.offset >= len(c.data) {
		return 0, 0, newParseError(Truncated, "")
	}
	b := c.data[c.offset]
	c.offset++

	majorType = (b >> 5) & 0x07
	additionalInfo := b & 0x1F

	switch {
	case additionalInfo <= 23:
		value = uint64(additionalInfo)
	case additionalInfo == 24:
		if c.offset+1 > len(c.data) {
			return 0, 0, newParseError(Truncated, "")
		}
		value = uint64(c.data[c.offset])
		c.offset++
	case additionalInfo == 25:
		if c.offset+2 > len(c.data) {
			return 0, 0, newParseError(Truncated, "")
		}
		value = uint64(binary.BigEndian.Uint16(c.data[c.offset : c.offset+2]))
		c.offset += 2
	case additionalInfo == 26:
		if c.offset+4 > len(c.data) {
			return 0, 0, newParseError(Truncated, "")
		}
		value = uint64(binary.BigEndian.Uint32(c.data[c.offset : c.offset+4]))
		c.offset += 4
	default:
		return 0, 0, newParseError(BadHeader, "")
	}

	return majorType, value, nil
}

func (c *cursor) textString() (string, error) {
	major, length, err := c.header()
	if err != nil {
		return "", err
	}
	if major != majorTextString {
		return "", newParseError(BadHeader, "")
	}
	raw, err := c.take(length)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (c *cursor) byteString() ([]byte, error) {
	major, length, err := c.header()
	if err != nil {
		return nil, err
	}
	if major != majorByteString {
		return nil, newParseError(BadHeader, "")
	}
	return c.take(length)
}

func (c *cursor) take(length uint64) ([]byte, error) {
	if length > uint64(len(c.data)-c.offset) {
		return nil, newParseError(Truncated, "")
	}
	out := make([]byte, length)
	copy(out, c.data[c.offset:c.offset+int(length)])
	c.offset += int(length)
	return out, nil
}

package buffer

import "unicode/utf16"

// DecodeString interprets raw bytes as either UTF-16LE or single-byte text.
// Malformed sequences are replaced rather than rejected, matching the
// lenient decoding of the source format.
func DecodeString(b []byte, unicode bool) string {
	if !unicode {
		return string(b)
	}
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		units = append(units, uint16(b[i])|uint16(b[i+1])<<8)
	}
	return string(utf16.Decode(units))
}

// ReadString reads n raw bytes at the cursor and decodes them with
// DecodeString.
func (r *Reader) ReadString(n int, unicode bool) (string, error) {
	b, err := r.Read(n)
	if err != nil {
		return "", err
	}
	return DecodeString(b, unicode), nil
}

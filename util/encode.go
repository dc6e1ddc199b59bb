package util

func EncodeUint32(buf []byte, u uint32) []byte {
	return append(buf, byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
}

func DecodeUint32(buf []byte) (uint32, bool) {
	if len(buf) < 4 {
		return 0, false
	}
	return uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3]), true
}

func EncodeUint64(buf []byte, u uint64) []byte {
	return append(buf, byte(u>>56), byte(u>>48), byte(u>>40), byte(u>>32),
		byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
}

func DecodeUint64(buf []byte) (uint64, bool) {
	if len(buf) < 8 {
		return 0, false
	}
	return uint64(buf[0])<<56 | uint64(buf[1])<<48 | uint64(buf[2])<<40 | uint64(buf[3])<<32 |
		uint64(buf[4])<<24 | uint64(buf[5])<<16 | uint64(buf[6])<<8 | uint64(buf[7]), true
}

func EncodeVarint(buf []byte, u uint64) []byte {
	for u >= 0x80 {
		buf = append(buf, byte(u)|0x80)
		u >>= 7
	}
	return append(buf, byte(u))
}

// DecodeVarint returns the remaining buffer, the decoded value, and whether
// decoding succeeded.
func DecodeVarint(buf []byte) ([]byte, uint64, bool) {
	var u uint64
	var s uint

	for idx := 0; idx < len(buf); idx++ {
		b := buf[idx]
		if b < 0x80 {
			if idx >= 9 && b > 1 {
				return nil, 0, false // overflows uint64
			}
			return buf[idx+1:], u | uint64(b)<<s, true
		}
		u |= uint64(b&0x7F) << s
		s += 7
	}
	return nil, 0, false
}

func EncodeZigzag64(buf []byte, n int64) []byte {
	return EncodeVarint(buf, uint64(n<<1)^uint64(n>>63))
}

func DecodeZigzag64(buf []byte) ([]byte, int64, bool) {
	buf, u, ok := DecodeVarint(buf)
	if !ok {
		return nil, 0, false
	}
	return buf, int64(u>>1) ^ -int64(u&1), true
}

// EncodeBytesSlice appends a length-framed encoding of bss: a varint count
// followed by a varint length and the raw bytes of each element.
func EncodeBytesSlice(buf []byte, bss [][]byte) []byte {
	buf = EncodeVarint(buf, uint64(len(bss)))
	for _, bs := range bss {
		buf = EncodeVarint(buf, uint64(len(bs)))
		buf = append(buf, bs...)
	}
	return buf
}

func DecodeBytesSlice(buf []byte) ([][]byte, bool) {
	buf, cnt, ok := DecodeVarint(buf)
	if !ok {
		return nil, false
	}

	bss := make([][]byte, 0, cnt)
	for cnt > 0 {
		var n uint64
		buf, n, ok = DecodeVarint(buf)
		if !ok || uint64(len(buf)) < n {
			return nil, false
		}
		bss = append(bss, buf[:n:n])
		buf = buf[n:]
		cnt -= 1
	}
	if len(buf) != 0 {
		return nil, false
	}
	return bss, true
}

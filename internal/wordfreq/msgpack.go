package wordfreq

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Minimal msgpack reader covering the subset the wordfreq data files use:
// ints, floats, strings, binary, arrays, and maps.

func decodeMsgpack(r io.Reader) (any, error) {
	dec := &msgpackReader{r: bufio.NewReader(r)}
	return dec.value()
}

type msgpackReader struct {
	r *bufio.Reader
}

func (d *msgpackReader) value() (any, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return nil, err
	}

	switch {
	case b <= 0x7f: // positive fixint
		return int64(b), nil
	case b >= 0xe0: // negative fixint
		return int64(int8(b)), nil
	case b >= 0xa0 && b <= 0xbf: // fixstr
		return d.str(int(b & 0x1f))
	case b >= 0x90 && b <= 0x9f: // fixarray
		return d.array(int(b & 0x0f))
	case b >= 0x80 && b <= 0x8f: // fixmap
		return d.mapping(int(b & 0x0f))
	}

	switch b {
	case 0xc0:
		return nil, nil
	case 0xc2:
		return false, nil
	case 0xc3:
		return true, nil
	case 0xc4, 0xd9:
		n, err := d.uintN(1)
		if err != nil {
			return nil, err
		}
		if b == 0xd9 {
			return d.str(int(n))
		}
		return d.bytes(int(n))
	case 0xc5, 0xda:
		n, err := d.uintN(2)
		if err != nil {
			return nil, err
		}
		if b == 0xda {
			return d.str(int(n))
		}
		return d.bytes(int(n))
	case 0xc6, 0xdb:
		n, err := d.uintN(4)
		if err != nil {
			return nil, err
		}
		if b == 0xdb {
			return d.str(int(n))
		}
		return d.bytes(int(n))
	case 0xca:
		n, err := d.uintN(4)
		if err != nil {
			return nil, err
		}
		return float64(math.Float32frombits(uint32(n))), nil
	case 0xcb:
		n, err := d.uintN(8)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(n), nil
	case 0xcc:
		n, err := d.uintN(1)
		return int64(n), err
	case 0xcd:
		n, err := d.uintN(2)
		return int64(n), err
	case 0xce:
		n, err := d.uintN(4)
		return int64(n), err
	case 0xcf:
		n, err := d.uintN(8)
		return n, err
	case 0xd0:
		n, err := d.uintN(1)
		return int64(int8(n)), err
	case 0xd1:
		n, err := d.uintN(2)
		return int64(int16(n)), err
	case 0xd2:
		n, err := d.uintN(4)
		return int64(int32(n)), err
	case 0xd3:
		n, err := d.uintN(8)
		return int64(n), err
	case 0xdc:
		n, err := d.uintN(2)
		if err != nil {
			return nil, err
		}
		return d.array(int(n))
	case 0xdd:
		n, err := d.uintN(4)
		if err != nil {
			return nil, err
		}
		return d.array(int(n))
	case 0xde:
		n, err := d.uintN(2)
		if err != nil {
			return nil, err
		}
		return d.mapping(int(n))
	case 0xdf:
		n, err := d.uintN(4)
		if err != nil {
			return nil, err
		}
		return d.mapping(int(n))
	default:
		return nil, fmt.Errorf("unsupported msgpack prefix 0x%x", b)
	}
}

func (d *msgpackReader) array(length int) ([]any, error) {
	out := make([]any, 0, length)
	for i := 0; i < length; i++ {
		val, err := d.value()
		if err != nil {
			return nil, err
		}
		out = append(out, val)
	}
	return out, nil
}

func (d *msgpackReader) mapping(length int) (map[any]any, error) {
	out := make(map[any]any, length)
	for i := 0; i < length; i++ {
		key, err := d.value()
		if err != nil {
			return nil, err
		}
		val, err := d.value()
		if err != nil {
			return nil, err
		}
		out[key] = val
	}
	return out, nil
}

func (d *msgpackReader) str(length int) (string, error) {
	data, err := d.bytes(length)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (d *msgpackReader) bytes(length int) ([]byte, error) {
	if length < 0 {
		return nil, fmt.Errorf("invalid msgpack length %d", length)
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *msgpackReader) uintN(size int) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(d.r, buf[:size]); err != nil {
		return 0, err
	}
	switch size {
	case 1:
		return uint64(buf[0]), nil
	case 2:
		return uint64(binary.BigEndian.Uint16(buf[:2])), nil
	case 4:
		return uint64(binary.BigEndian.Uint32(buf[:4])), nil
	default:
		return binary.BigEndian.Uint64(buf[:8]), nil
	}
}

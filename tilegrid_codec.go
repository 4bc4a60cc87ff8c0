package quadbatch

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"strconv"
)

// GridFormatVersion is the version byte written by WriteTo.
const GridFormatVersion = 1

// maxGridCells bounds the allocation a decoded header may request.
const maxGridCells = 1 << 26

// Binary layout, big-endian:
//
//	[byte version][int32 width][int32 height]
//	[int32 cells[width*height]][byte flags[width*height]]
//	[byte ambientMode]
//	  mode != none: [byte components][float32 ambient[...]]

// MarshalBinary implements encoding.BinaryMarshaler.
func (g *TileGridMap) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(g.encodedLen())
	if _, err := g.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *TileGridMap) encodedLen() int {
	n := 1 + 4 + 4 + len(g.cells)*4 + len(g.flags) + 1
	if g.ambientMode != AmbientNone {
		n += 1 + len(g.ambient)*4
	}
	return n
}

// WriteTo writes the binary form of g to w.
func (g *TileGridMap) WriteTo(w io.Writer) (int64, error) {
	b := make([]byte, 0, g.encodedLen())
	b = append(b, GridFormatVersion)
	b = binary.BigEndian.AppendUint32(b, uint32(int32(g.width)))
	b = binary.BigEndian.AppendUint32(b, uint32(int32(g.height)))
	for _, c := range g.cells {
		b = binary.BigEndian.AppendUint32(b, uint32(c))
	}
	b = append(b, g.flags...)
	b = append(b, byte(g.ambientMode))
	if g.ambientMode != AmbientNone {
		b = append(b, byte(g.ambientComps))
		for _, f := range g.ambient {
			b = binary.BigEndian.AppendUint32(b, math.Float32bits(f))
		}
	}
	n, err := w.Write(b)
	return int64(n), err
}

func gridSize(g *TileGridMap) string {
	return strconv.Itoa(g.width) + "x" + strconv.Itoa(g.height)
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler. On error g is left
// unchanged. Trailing bytes after a complete grid are an error, and so is a
// size change while a mesh is bound to g.
func (g *TileGridMap) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	out, err := ReadTileGridMap(r)
	if err != nil {
		return err
	}
	if r.Len() != 0 {
		return &DeserializationError{Offset: int64(len(data) - r.Len()), Reason: "trailing bytes"}
	}
	if g.Bound() && (out.width != g.width || out.height != g.height) {
		return &DeserializationError{
			Offset: 1,
			Reason: "size " + gridSize(out) + " does not match bound grid " + gridSize(g),
		}
	}
	listeners, next := g.listeners, g.nextListener
	*g = *out
	g.listeners, g.nextListener = listeners, next
	g.notify(g.Bounds())
	return nil
}

// gridDecoder reads fixed-size fields and remembers the byte offset for
// error reporting.
type gridDecoder struct {
	r   io.Reader
	off int64
	buf [4]byte
}

func (d *gridDecoder) fail(reason string, err error) error {
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return &DeserializationError{Offset: d.off, Reason: reason, Err: err}
}

func (d *gridDecoder) full(p []byte, what string) error {
	n, err := io.ReadFull(d.r, p)
	d.off += int64(n)
	if err != nil {
		return d.fail("truncated "+what, err)
	}
	return nil
}

func (d *gridDecoder) readByte(what string) (byte, error) {
	if err := d.full(d.buf[:1], what); err != nil {
		return 0, err
	}
	return d.buf[0], nil
}

func (d *gridDecoder) readUint32(what string) (uint32, error) {
	if err := d.full(d.buf[:4], what); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(d.buf[:4]), nil
}

// ReadTileGridMap decodes one grid from r. Any malformed input yields a
// *DeserializationError; no partially decoded grid is returned.
func ReadTileGridMap(r io.Reader) (*TileGridMap, error) {
	d := &gridDecoder{r: r}

	version, err := d.readByte("version")
	if err != nil {
		return nil, err
	}
	if version != GridFormatVersion {
		return nil, &DeserializationError{Offset: 0, Reason: "unsupported version " + strconv.Itoa(int(version))}
	}
	w, err := d.readUint32("width")
	if err != nil {
		return nil, err
	}
	h, err := d.readUint32("height")
	if err != nil {
		return nil, err
	}
	width, height := int64(int32(w)), int64(int32(h))
	if width < 0 || height < 0 {
		return nil, &DeserializationError{Offset: d.off, Reason: "negative dimensions"}
	}
	if width*height > maxGridCells {
		return nil, &DeserializationError{Offset: d.off, Reason: "grid too large"}
	}

	g := NewTileGridMap(int(width), int(height))
	raw := make([]byte, len(g.cells)*4)
	if err := d.full(raw, "cells"); err != nil {
		return nil, err
	}
	for i := range g.cells {
		g.cells[i] = int32(binary.BigEndian.Uint32(raw[i*4:]))
	}
	if err := d.full(g.flags, "flags"); err != nil {
		return nil, err
	}

	mode, err := d.readByte("ambient mode")
	if err != nil {
		return nil, err
	}
	switch AmbientMode(mode) {
	case AmbientNone:
		return g, nil
	case AmbientChar, AmbientVertex:
	default:
		return nil, &DeserializationError{Offset: d.off - 1, Reason: "unknown ambient mode " + strconv.Itoa(int(mode))}
	}
	comps, err := d.readByte("ambient components")
	if err != nil {
		return nil, err
	}
	if err := g.SetAmbientMode(AmbientMode(mode), int(comps)); err != nil {
		return nil, &DeserializationError{Offset: d.off - 1, Reason: "bad ambient components", Err: err}
	}
	raw = make([]byte, len(g.ambient)*4)
	if err := d.full(raw, "ambient colors"); err != nil {
		return nil, err
	}
	for i := range g.ambient {
		g.ambient[i] = math.Float32frombits(binary.BigEndian.Uint32(raw[i*4:]))
	}
	return g, nil
}

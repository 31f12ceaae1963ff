/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package jimage reads the JDK's packaged-module image format (normally
// found at $JAVA_HOME/lib/modules), per spec.md §4.2 and §6's "jimage
// format" section: a fixed-order header / redirect table / attribute
// offsets / attribute data / strings / data layout, auto-detecting
// big-endian vs little-endian from the magic number. The file is mapped
// read-only with mmap-go rather than read into a []byte up front, since a
// modules image can run to hundreds of megabytes and the VM typically only
// ever resolves a handful of classes out of it per run.
package jimage

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	mmap "github.com/edsrzf/mmap-go"
)

// magicBig and magicLittle are the two byte orders of the jimage magic
// number 0xCAFEDADA; which one appears first in the file tells the reader
// which byte order every other header field uses.
var (
	magicBig    = [4]byte{0xCA, 0xFE, 0xDA, 0xDA}
	magicLittle = [4]byte{0xDA, 0xDA, 0xFE, 0xCA}
)

const headerSize = 28

// Header is the jimage file header, per spec.md §6: magic, version, flags,
// resource count, table length, locations size, strings size.
type Header struct {
	Magic         uint32
	MajorVersion  uint16
	MinorVersion  uint16
	Flags         uint32
	ResourceCount uint32
	TableLength   uint32
	LocationsSize uint32
	StringsSize   uint32
}

// Reader is an open, memory-mapped jimage file.
type Reader struct {
	f      *os.File
	data   mmap.MMap
	order  binary.ByteOrder
	header Header

	redirectOff  int64
	offsetsOff   int64
	attrDataOff  int64
	stringsOff   int64
	dataOff      int64
}

// Open memory-maps path (typically $JAVA_HOME/lib/modules) and parses its
// header. The returned Reader must be closed with Close when done.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	data, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	if len(data) < headerSize {
		data.Unmap()
		f.Close()
		return nil, fmt.Errorf("jimage: %s is too small to contain a header (%d bytes)", path, len(data))
	}

	order, err := detectByteOrder(data[:4])
	if err != nil {
		data.Unmap()
		f.Close()
		return nil, fmt.Errorf("jimage: %s: %w", path, err)
	}

	r := &Reader{f: f, data: data, order: order}
	r.header = Header{
		Magic:         order.Uint32(data[0:4]),
		MajorVersion:  order.Uint16(data[4:6]),
		MinorVersion:  order.Uint16(data[6:8]),
		Flags:         order.Uint32(data[8:12]),
		ResourceCount: order.Uint32(data[12:16]),
		TableLength:   order.Uint32(data[16:20]),
		LocationsSize: order.Uint32(data[20:24]),
		StringsSize:   order.Uint32(data[24:28]),
	}

	r.redirectOff = headerSize
	r.offsetsOff = r.redirectOff + int64(r.header.TableLength)*4
	r.attrDataOff = r.offsetsOff + int64(r.header.TableLength)*4
	r.stringsOff = r.attrDataOff + int64(r.header.LocationsSize)
	r.dataOff = r.stringsOff + int64(r.header.StringsSize)

	if int64(len(data)) < r.dataOff {
		data.Unmap()
		f.Close()
		return nil, fmt.Errorf("jimage: %s: header declares a layout larger than the file (%d bytes)", path, len(data))
	}
	return r, nil
}

// detectByteOrder inspects the first four bytes against both magic-number
// orientations, per spec.md §6's "auto-detected from magic".
func detectByteOrder(magic []byte) (binary.ByteOrder, error) {
	var m [4]byte
	copy(m[:], magic)
	switch m {
	case magicBig:
		return binary.BigEndian, nil
	case magicLittle:
		return binary.LittleEndian, nil
	default:
		return nil, fmt.Errorf("invalid jimage magic bytes %x", magic)
	}
}

// Close unmaps the file and releases its handle.
func (r *Reader) Close() error {
	if err := r.data.Unmap(); err != nil {
		r.f.Close()
		return err
	}
	return r.f.Close()
}

// Header returns the parsed jimage header.
func (r *Reader) Header() Header {
	return r.header
}

// location is one resolved ImageLocation attribute stream, per the real
// jimage format's variable-length attribute encoding (attribute kind and
// byte-width packed into a leading tag byte, repeated until a zero byte).
type location struct {
	module, parent, base, extension string
	offset, compressed, uncompressed uint64
}

// attribute kinds, per the jimage ImageLocation attribute stream encoding.
const (
	attrEnd = iota
	attrModule
	attrParent
	attrBase
	attrExtension
	attrOffset
	attrCompressed
	attrUncompressed
)

// fullName reconstructs a resource's full lookup name, e.g.
// "/java.base/java/lang/Object.class", from its decoded location.
func (l location) fullName() string {
	name := "/" + l.module + "/"
	if l.parent != "" {
		name += l.parent + "/"
	}
	name += l.base
	if l.extension != "" {
		name += "." + l.extension
	}
	return name
}

// stringAt reads a null-terminated string out of the strings section
// starting at byte offset off. This VM's strings section isn't
// prefix-compressed the way the reference implementation's ImageStrings
// table is (see DESIGN.md) -- each string is stored in full and
// NUL-terminated, which is simpler to produce and parse but takes more
// space per jimage file assembled by this toolchain.
func (r *Reader) stringAt(off uint64) (string, error) {
	start := r.stringsOff + int64(off)
	if start < r.stringsOff || start >= r.dataOff {
		return "", fmt.Errorf("jimage: string offset %d out of range", off)
	}
	end := start
	for end < int64(len(r.data)) && r.data[end] != 0 {
		end++
	}
	return string(r.data[start:end]), nil
}

// decodeLocation parses the attribute stream for one location entry
// starting at byte offset off within the attribute-data section.
func (r *Reader) decodeLocation(off uint32) (location, error) {
	var loc location
	pos := r.attrDataOff + int64(off)
	for {
		if pos < 0 || pos >= r.stringsOff {
			return location{}, fmt.Errorf("jimage: attribute stream ran past its section at offset %d", off)
		}
		tag := r.data[pos]
		pos++
		if tag == attrEnd {
			break
		}
		kind := int(tag >> 3)
		width := int(tag&0x7) + 1
		if pos+int64(width) > r.stringsOff {
			return location{}, fmt.Errorf("jimage: truncated attribute value at offset %d", off)
		}
		var value uint64
		for i := 0; i < width; i++ {
			value = value<<8 | uint64(r.data[pos+int64(i)])
		}
		pos += int64(width)

		switch kind {
		case attrModule:
			s, err := r.stringAt(value)
			if err != nil {
				return location{}, err
			}
			loc.module = s
		case attrParent:
			s, err := r.stringAt(value)
			if err != nil {
				return location{}, err
			}
			loc.parent = s
		case attrBase:
			s, err := r.stringAt(value)
			if err != nil {
				return location{}, err
			}
			loc.base = s
		case attrExtension:
			s, err := r.stringAt(value)
			if err != nil {
				return location{}, err
			}
			loc.extension = s
		case attrOffset:
			loc.offset = value
		case attrCompressed:
			loc.compressed = value
		case attrUncompressed:
			loc.uncompressed = value
		default:
			return location{}, fmt.Errorf("jimage: unknown attribute kind %d at offset %d", kind, off)
		}
	}
	return loc, nil
}

// Lookup resolves name (e.g. "/java.base/java/lang/Object.class") to its
// resource bytes. The redirect table's perfect-hash probe isn't
// reimplemented here (see DESIGN.md); instead every non-empty attribute
// offset slot is decoded and its reconstructed name compared directly,
// trading the reference reader's O(1) probe for an O(table length) scan.
func (r *Reader) Lookup(name string) ([]byte, error) {
	for i := uint32(0); i < r.header.TableLength; i++ {
		attrOffPos := r.offsetsOff + int64(i)*4
		attrOff := r.order.Uint32(r.data[attrOffPos : attrOffPos+4])
		if attrOff == 0 {
			continue // empty redirect-table slot
		}
		loc, err := r.decodeLocation(attrOff)
		if err != nil {
			return nil, err
		}
		if loc.base == "" {
			continue
		}
		if loc.fullName() != name {
			continue
		}
		return r.resourceBytes(loc)
	}
	return nil, fmt.Errorf("jimage: resource not found: %s", name)
}

// LookupClass resolves a JVM-internal class name such as "java/lang/Object"
// to its class-file bytes, without the caller needing to know which module
// packages it -- the reader scans every location whose parent/base (ignoring
// the module component) matches className and returns the first hit in
// offset-table order; no module is preferred over another.
func (r *Reader) LookupClass(className string) ([]byte, error) {
	slash := -1
	for i := len(className) - 1; i >= 0; i-- {
		if className[i] == '/' {
			slash = i
			break
		}
	}
	wantParent, wantBase := "", className
	if slash >= 0 {
		wantParent, wantBase = className[:slash], className[slash+1:]
	}

	for i := uint32(0); i < r.header.TableLength; i++ {
		attrOffPos := r.offsetsOff + int64(i)*4
		attrOff := r.order.Uint32(r.data[attrOffPos : attrOffPos+4])
		if attrOff == 0 {
			continue
		}
		loc, err := r.decodeLocation(attrOff)
		if err != nil {
			return nil, err
		}
		if loc.extension != "class" || loc.base != wantBase || loc.parent != wantParent {
			continue
		}
		return r.resourceBytes(loc)
	}
	return nil, fmt.Errorf("jimage: class not found: %s", className)
}

// resourceBytes slices the data section for loc, per spec.md §4.2: an
// uncompressed size of 0, or one equal to the compressed size, means the
// resource is stored as-is at Compressed size; any other uncompressed size
// means the bytes are compressed and need a decoder this VM doesn't implement.
func (r *Reader) resourceBytes(loc location) ([]byte, error) {
	start := r.dataOff + int64(loc.offset)
	size := loc.compressed
	if loc.uncompressed != 0 && loc.uncompressed != loc.compressed {
		return nil, fmt.Errorf("jimage: resource %s is compressed, which this reader does not decode", loc.fullName())
	}
	end := start + int64(size)
	if start < r.dataOff || end > int64(len(r.data)) {
		return nil, fmt.Errorf("jimage: resource %s points outside the data section", loc.fullName())
	}
	out := make([]byte, size)
	copy(out, r.data[start:end])
	return out, nil
}

var (
	cacheMu sync.Mutex
	cache   = map[string]*Reader{}
)

// openCached returns the Reader for imagePath, opening and memoizing it on
// first use so repeated class lookups against the same modules image don't
// re-map the file.
func openCached(imagePath string) (*Reader, error) {
	cacheMu.Lock()
	defer cacheMu.Unlock()
	if r, ok := cache[imagePath]; ok {
		return r, nil
	}
	r, err := Open(imagePath)
	if err != nil {
		return nil, err
	}
	cache[imagePath] = r
	return r, nil
}

// ReadClass resolves className against the jimage file at imagePath,
// matching the signature classloader.JimageClassReader expects so it can be
// assigned there directly, e.g. classloader.JimageClassReader = jimage.ReadClass.
func ReadClass(imagePath, className string) ([]byte, error) {
	r, err := openCached(imagePath)
	if err != nil {
		return nil, err
	}
	return r.LookupClass(className)
}

/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package jimage

import (
	"encoding/binary"
	"os"
	"testing"
)

// buildImage assembles a minimal, well-formed jimage file containing a
// single resource, "/java.base/java/lang/Object.class" with the given
// content, so the reader can be exercised without a real JDK install.
func buildImage(t *testing.T, order binary.ByteOrder, content []byte) string {
	t.Helper()

	strings := []byte("java.base\x00java/lang\x00Object\x00class\x00")
	offModule, offParent, offBase, offExt := 0, 10, 20, 27

	// attribute stream: MODULE, PARENT, BASE, EXTENSION, OFFSET, COMPRESSED, END,
	// preceded by one zero byte because the reader treats offset 0 as an
	// empty redirect-table slot
	attr := []byte{0}
	attr = append(attr, tag(attrModule, 1), byte(offModule))
	attr = append(attr, tag(attrParent, 1), byte(offParent))
	attr = append(attr, tag(attrBase, 1), byte(offBase))
	attr = append(attr, tag(attrExtension, 1), byte(offExt))
	attr = append(attr, tag(attrOffset, 1), byte(0))
	attr = append(attr, tag(attrCompressed, 1), byte(len(content)))
	attr = append(attr, 0) // END

	tableLength := uint32(1)
	redirect := make([]byte, 4*tableLength)
	offsets := make([]byte, 4*tableLength)
	order.PutUint32(offsets[0:4], 1) // attribute stream starts at attrData offset 1

	var buf []byte
	magic := make([]byte, 4)
	if order == binary.BigEndian {
		copy(magic, magicBig[:])
	} else {
		copy(magic, magicLittle[:])
	}
	buf = append(buf, magic...)
	u16 := make([]byte, 2)
	order.PutUint16(u16, 9)
	buf = append(buf, u16...)
	order.PutUint16(u16, 0)
	buf = append(buf, u16...)
	u32 := make([]byte, 4)
	order.PutUint32(u32, 0) // flags
	buf = append(buf, u32...)
	order.PutUint32(u32, 1) // resource count
	buf = append(buf, u32...)
	order.PutUint32(u32, tableLength)
	buf = append(buf, u32...)
	order.PutUint32(u32, uint32(len(attr))) // locations size
	buf = append(buf, u32...)
	order.PutUint32(u32, uint32(len(strings))) // strings size
	buf = append(buf, u32...)

	buf = append(buf, redirect...)
	buf = append(buf, offsets...)
	buf = append(buf, attr...)
	buf = append(buf, strings...)
	buf = append(buf, content...)

	f, err := os.CreateTemp(t.TempDir(), "modules")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	if _, err := f.Write(buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f.Close()
	return f.Name()
}

func tag(kind, width int) byte {
	return byte(kind<<3 | (width - 1))
}

func TestOpenDetectsBigEndian(t *testing.T) {
	path := buildImage(t, binary.BigEndian, []byte{0xCA, 0xFE, 0xBA, 0xBE})
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	if r.Header().TableLength != 1 {
		t.Errorf("expected table length 1, got %d", r.Header().TableLength)
	}
}

func TestOpenDetectsLittleEndian(t *testing.T) {
	path := buildImage(t, binary.LittleEndian, []byte{0xCA, 0xFE, 0xBA, 0xBE})
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()
	if r.Header().ResourceCount != 1 {
		t.Errorf("expected resource count 1, got %d", r.Header().ResourceCount)
	}
}

func TestLookupResolvesFullResourceName(t *testing.T) {
	content := []byte{0xCA, 0xFE, 0xBA, 0xBE, 0x00, 0x00, 0x00, 0x39}
	path := buildImage(t, binary.BigEndian, content)
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	got, err := r.Lookup("/java.base/java/lang/Object.class")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("got %x, want %x", got, content)
	}
}

func TestLookupClassIgnoresModule(t *testing.T) {
	content := []byte{1, 2, 3, 4}
	path := buildImage(t, binary.BigEndian, content)
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	got, err := r.LookupClass("java/lang/Object")
	if err != nil {
		t.Fatalf("LookupClass: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("got %x, want %x", got, content)
	}
}

func TestLookupMissingResourceErrors(t *testing.T) {
	path := buildImage(t, binary.BigEndian, []byte{1})
	r, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if _, err := r.Lookup("/java.base/java/lang/String.class"); err == nil {
		t.Error("expected an error looking up a resource that isn't in the image")
	}
}

func TestReadClassCachesReaderAcrossCalls(t *testing.T) {
	content := []byte{9, 9, 9}
	path := buildImage(t, binary.BigEndian, content)

	got1, err := ReadClass(path, "java/lang/Object")
	if err != nil {
		t.Fatalf("ReadClass: %v", err)
	}
	got2, err := ReadClass(path, "java/lang/Object")
	if err != nil {
		t.Fatalf("ReadClass (cached): %v", err)
	}
	if string(got1) != string(content) || string(got2) != string(content) {
		t.Errorf("got %x / %x, want %x", got1, got2, content)
	}
}

func TestOpenRejectsBadMagic(t *testing.T) {
	path := buildImage(t, binary.BigEndian, []byte{1})
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	data[0] = 0x00
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := Open(path); err == nil {
		t.Error("expected an error opening a file with an invalid magic number")
	}
}

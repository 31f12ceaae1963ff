/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"encoding/binary"
	"fmt"
	"math"

	"tessera/stringPool"
)

// ClassFormatError is raised by Parse when the byte stream isn't a valid
// class file -- a host-internal error, never surfaced to Java code directly
// (spec.md §7 distinguishes this from a thrown java.lang.ClassFormatError,
// which gfunction constructs from this error's message when needed).
type ClassFormatError struct {
	Msg string
}

func (e *ClassFormatError) Error() string {
	return "class format error: " + e.Msg
}

const classMagic uint32 = 0xCAFEBABE

// parseState threads the read cursor through the raw class bytes.
type parseState struct {
	raw []byte
	pos int
}

func (p *parseState) u1() (uint8, error) {
	if p.pos+1 > len(p.raw) {
		return 0, fmt.Errorf("unexpected EOF reading u1 at offset %d", p.pos)
	}
	v := p.raw[p.pos]
	p.pos++
	return v, nil
}

func (p *parseState) u2() (uint16, error) {
	if p.pos+2 > len(p.raw) {
		return 0, fmt.Errorf("unexpected EOF reading u2 at offset %d", p.pos)
	}
	v := binary.BigEndian.Uint16(p.raw[p.pos:])
	p.pos += 2
	return v, nil
}

func (p *parseState) u4() (uint32, error) {
	if p.pos+4 > len(p.raw) {
		return 0, fmt.Errorf("unexpected EOF reading u4 at offset %d", p.pos)
	}
	v := binary.BigEndian.Uint32(p.raw[p.pos:])
	p.pos += 4
	return v, nil
}

func (p *parseState) bytesN(n int) ([]byte, error) {
	if p.pos+n > len(p.raw) {
		return nil, fmt.Errorf("unexpected EOF reading %d bytes at offset %d", n, p.pos)
	}
	b := p.raw[p.pos : p.pos+n]
	p.pos += n
	return b, nil
}

// rawCpEntry is the wire-format shape of a single constant-pool entry before
// it's lowered into the type-split CPool representation.
type rawCpEntry struct {
	tag      uint16
	u1, u2   uint16 // meaning varies by tag: class-index/name-index, etc.
	utf8     string
	intVal   int32
	floatVal float32
	longVal  int64
	doubleVal float64
}

// Parse decodes a raw .class byte stream into a ClData. It does not link the
// class (resolve its superclass or build the instance field layout) -- that
// is classloader.go's job, run only once the class's own bytes have format-
// checked cleanly, per spec.md §4.1/§4.4's two-phase split.
func Parse(raw []byte, sourceName string) (*ClData, error) {
	p := &parseState{raw: raw}

	magic, err := p.u4()
	if err != nil {
		return nil, &ClassFormatError{Msg: err.Error()}
	}
	if magic != classMagic {
		return nil, &ClassFormatError{Msg: fmt.Sprintf("%s: bad magic number 0x%08X", sourceName, magic)}
	}

	minorVersion, err := p.u2()
	if err != nil {
		return nil, &ClassFormatError{Msg: err.Error()}
	}
	majorVersion, err := p.u2()
	if err != nil {
		return nil, &ClassFormatError{Msg: err.Error()}
	}
	_, _ = minorVersion, majorVersion

	cpCount, err := p.u2()
	if err != nil {
		return nil, &ClassFormatError{Msg: err.Error()}
	}

	rawEntries := make([]rawCpEntry, cpCount)
	// Slot 0 is the permanent dummy; JVMS numbers real entries 1..cpCount-1.
	for i := uint16(1); i < cpCount; i++ {
		tag, err := p.u1()
		if err != nil {
			return nil, &ClassFormatError{Msg: err.Error()}
		}
		entry, wide, err := parseOneCpEntry(p, uint16(tag))
		if err != nil {
			return nil, &ClassFormatError{Msg: fmt.Sprintf("%s: constant pool entry %d: %v", sourceName, i, err)}
		}
		rawEntries[i] = entry
		if wide {
			// Longs and doubles occupy two CP slots; the second is a dummy.
			i++
			if i < cpCount {
				rawEntries[i] = rawCpEntry{tag: Dummy}
			}
		}
	}

	cp, err := lowerConstantPool(rawEntries)
	if err != nil {
		return nil, &ClassFormatError{Msg: fmt.Sprintf("%s: %v", sourceName, err)}
	}

	accessFlagsRaw, err := p.u2()
	if err != nil {
		return nil, &ClassFormatError{Msg: err.Error()}
	}
	thisClassIdx, err := p.u2()
	if err != nil {
		return nil, &ClassFormatError{Msg: err.Error()}
	}
	superClassIdx, err := p.u2()
	if err != nil {
		return nil, &ClassFormatError{Msg: err.Error()}
	}

	className := GetClassNameFromCPclassref(cp, int(thisClassIdx))
	if className == "" {
		return nil, &ClassFormatError{Msg: fmt.Sprintf("%s: invalid this_class index %d", sourceName, thisClassIdx)}
	}
	superName := ""
	if superClassIdx != 0 {
		superName = GetClassNameFromCPclassref(cp, int(superClassIdx))
	}

	ifaceCount, err := p.u2()
	if err != nil {
		return nil, &ClassFormatError{Msg: err.Error()}
	}
	interfaces := make([]uint16, ifaceCount)
	for i := range interfaces {
		idx, err := p.u2()
		if err != nil {
			return nil, &ClassFormatError{Msg: err.Error()}
		}
		interfaces[i] = idx
	}

	fieldCount, err := p.u2()
	if err != nil {
		return nil, &ClassFormatError{Msg: err.Error()}
	}
	fields := make([]Field, fieldCount)
	for i := range fields {
		f, err := parseField(p, cp)
		if err != nil {
			return nil, &ClassFormatError{Msg: fmt.Sprintf("%s: field %d: %v", sourceName, i, err)}
		}
		fields[i] = f
	}

	methodCount, err := p.u2()
	if err != nil {
		return nil, &ClassFormatError{Msg: err.Error()}
	}
	methodTable := make(map[string]*Method, methodCount)
	for i := 0; i < int(methodCount); i++ {
		m, err := parseMethod(p, cp)
		if err != nil {
			return nil, &ClassFormatError{Msg: fmt.Sprintf("%s: method %d: %v", sourceName, i, err)}
		}
		methodTable[m.Name+m.Desc] = m
	}

	classAttrCount, err := p.u2()
	if err != nil {
		return nil, &ClassFormatError{Msg: err.Error()}
	}
	attrs := make([]Attr, classAttrCount)
	sourceFile := ""
	for i := range attrs {
		a, err := parseAttr(p, cp)
		if err != nil {
			return nil, &ClassFormatError{Msg: fmt.Sprintf("%s: class attribute %d: %v", sourceName, i, err)}
		}
		attrs[i] = a
		if a.AttrName == "SourceFile" && len(a.AttrContent) == 2 {
			idx := binary.BigEndian.Uint16(a.AttrContent)
			sourceFile = utf8At(cp, idx)
		}
	}

	cd := &ClData{
		Name:        className,
		NameIndex:   stringPool.GetStringIndex(&className),
		Superclass:  superName,
		SourceFile:  sourceFile,
		Interfaces:  interfaces,
		Fields:      fields,
		MethodTable: methodTable,
		Attributes:  attrs,
		CP:          *cp,
		Access:      decodeAccessFlags(accessFlagsRaw),
		ClInit:      0,
	}
	if superName != "" {
		sn := superName
		cd.SuperclassIndex = stringPool.GetStringIndex(&sn)
	}
	idx := pkgOf(className)
	cd.Pkg = idx

	return cd, nil
}

func pkgOf(className string) string {
	for i := len(className) - 1; i >= 0; i-- {
		if className[i] == '/' {
			return className[:i]
		}
	}
	return ""
}

func decodeAccessFlags(raw uint16) AccessFlags {
	return AccessFlags{
		ClassIsPublic:     raw&0x0001 != 0,
		ClassIsFinal:      raw&0x0010 != 0,
		ClassIsSuper:      raw&0x0020 != 0,
		ClassIsInterface:  raw&0x0200 != 0,
		ClassIsAbstract:   raw&0x0400 != 0,
		ClassIsSynthetic:  raw&0x1000 != 0,
		ClassIsAnnotation: raw&0x2000 != 0,
		ClassIsEnum:       raw&0x4000 != 0,
		ClassIsModule:     raw&0x8000 != 0,
	}
}

func parseOneCpEntry(p *parseState, tag uint16) (rawCpEntry, bool, error) {
	switch tag {
	case UTF8:
		length, err := p.u2()
		if err != nil {
			return rawCpEntry{}, false, err
		}
		b, err := p.bytesN(int(length))
		if err != nil {
			return rawCpEntry{}, false, err
		}
		return rawCpEntry{tag: tag, utf8: string(b)}, false, nil
	case IntConst:
		v, err := p.u4()
		if err != nil {
			return rawCpEntry{}, false, err
		}
		return rawCpEntry{tag: tag, intVal: int32(v)}, false, nil
	case FloatConst:
		v, err := p.u4()
		if err != nil {
			return rawCpEntry{}, false, err
		}
		return rawCpEntry{tag: tag, floatVal: float32frombits(v)}, false, nil
	case LongConst:
		hi, err := p.u4()
		if err != nil {
			return rawCpEntry{}, false, err
		}
		lo, err := p.u4()
		if err != nil {
			return rawCpEntry{}, false, err
		}
		return rawCpEntry{tag: tag, longVal: int64(hi)<<32 | int64(lo)}, true, nil
	case DoubleConst:
		hi, err := p.u4()
		if err != nil {
			return rawCpEntry{}, false, err
		}
		lo, err := p.u4()
		if err != nil {
			return rawCpEntry{}, false, err
		}
		return rawCpEntry{tag: tag, doubleVal: float64frombits(uint64(hi)<<32 | uint64(lo))}, true, nil
	case ClassRef, StringConst, MethodType, ModuleRef, PackageRef:
		idx, err := p.u2()
		if err != nil {
			return rawCpEntry{}, false, err
		}
		return rawCpEntry{tag: tag, u1: idx}, false, nil
	case FieldRef, MethodRef, InterfaceRef, NameAndType, Dynamic, InvokeDynamic:
		a, err := p.u2()
		if err != nil {
			return rawCpEntry{}, false, err
		}
		b, err := p.u2()
		if err != nil {
			return rawCpEntry{}, false, err
		}
		return rawCpEntry{tag: tag, u1: a, u2: b}, false, nil
	case MethodHandle:
		kind, err := p.u1()
		if err != nil {
			return rawCpEntry{}, false, err
		}
		idx, err := p.u2()
		if err != nil {
			return rawCpEntry{}, false, err
		}
		return rawCpEntry{tag: tag, u1: uint16(kind), u2: idx}, false, nil
	default:
		return rawCpEntry{}, false, fmt.Errorf("unrecognized constant pool tag %d", tag)
	}
}

// lowerConstantPool converts the raw wire-format entries into the type-split
// CPool representation, resolving UTF8/class-ref indices into stringPool
// indices as it goes.
func lowerConstantPool(raw []rawCpEntry) (*CPool, error) {
	cp := &CPool{CpIndex: make([]CpEntry, len(raw))}

	// First pass: materialize every UTF8 so later passes can resolve names.
	for i, e := range raw {
		if e.tag == UTF8 {
			cp.CpIndex[i] = CpEntry{Type: UTF8, Slot: uint16(len(cp.Utf8Refs))}
			cp.Utf8Refs = append(cp.Utf8Refs, e.utf8)
		}
	}

	for i, e := range raw {
		switch e.tag {
		case UTF8:
			// handled above
		case IntConst:
			cp.CpIndex[i] = CpEntry{Type: IntConst, Slot: uint16(len(cp.IntConsts))}
			cp.IntConsts = append(cp.IntConsts, e.intVal)
		case FloatConst:
			cp.CpIndex[i] = CpEntry{Type: FloatConst, Slot: uint16(len(cp.Floats))}
			cp.Floats = append(cp.Floats, e.floatVal)
		case LongConst:
			cp.CpIndex[i] = CpEntry{Type: LongConst, Slot: uint16(len(cp.LongConsts))}
			cp.LongConsts = append(cp.LongConsts, e.longVal)
		case DoubleConst:
			cp.CpIndex[i] = CpEntry{Type: DoubleConst, Slot: uint16(len(cp.Doubles))}
			cp.Doubles = append(cp.Doubles, e.doubleVal)
		case StringConst:
			// Slot is the CP index of the referenced CONSTANT_Utf8 entry,
			// matching JVMS 4.4.3's string_index field directly.
			if int(e.u1) >= len(raw) || raw[e.u1].tag != UTF8 {
				return nil, fmt.Errorf("String constant at slot %d references non-UTF8 index %d", i, e.u1)
			}
			cp.CpIndex[i] = CpEntry{Type: StringConst, Slot: e.u1}
		case ClassRef:
			nameStr := utf8At(cp, e.u1)
			idx := stringPool.GetStringIndex(&nameStr)
			cp.CpIndex[i] = CpEntry{Type: ClassRef, Slot: uint16(len(cp.ClassRefs))}
			cp.ClassRefs = append(cp.ClassRefs, idx)
		case NameAndType:
			cp.CpIndex[i] = CpEntry{Type: NameAndType, Slot: uint16(len(cp.NameAndTypes))}
			cp.NameAndTypes = append(cp.NameAndTypes, NameAndTypeEntry{NameIndex: e.u1, DescIndex: e.u2})
		case FieldRef:
			cp.CpIndex[i] = CpEntry{Type: FieldRef, Slot: uint16(len(cp.FieldRefs))}
			cp.FieldRefs = append(cp.FieldRefs, FieldRefEntry{ClassIndex: e.u1, NameAndType: e.u2})
		case MethodRef:
			cp.CpIndex[i] = CpEntry{Type: MethodRef, Slot: uint16(len(cp.MethodRefs))}
			cp.MethodRefs = append(cp.MethodRefs, MethodRefEntry{ClassIndex: e.u1, NameAndType: e.u2})
		case InterfaceRef:
			cp.CpIndex[i] = CpEntry{Type: InterfaceRef, Slot: uint16(len(cp.InterfaceRefs))}
			cp.InterfaceRefs = append(cp.InterfaceRefs, InterfaceRefEntry{ClassIndex: e.u1, NameAndType: e.u2})
		case MethodType:
			cp.CpIndex[i] = CpEntry{Type: MethodType, Slot: uint16(len(cp.MethodTypes))}
			cp.MethodTypes = append(cp.MethodTypes, e.u1)
		case MethodHandle:
			cp.CpIndex[i] = CpEntry{Type: MethodHandle, Slot: uint16(len(cp.MethodHandles))}
			cp.MethodHandles = append(cp.MethodHandles, MethodHandleEntry{RefKind: e.u1, RefIndex: e.u2})
		case Dynamic:
			cp.CpIndex[i] = CpEntry{Type: Dynamic, Slot: uint16(len(cp.Dynamics))}
			cp.Dynamics = append(cp.Dynamics, DynamicEntry{BootstrapIndex: e.u1, NameAndType: e.u2})
		case InvokeDynamic:
			cp.CpIndex[i] = CpEntry{Type: InvokeDynamic, Slot: uint16(len(cp.InvokeDynamics))}
			cp.InvokeDynamics = append(cp.InvokeDynamics, InvokeDynamicEntry{BootstrapIndex: e.u1, NameAndType: e.u2})
		case ModuleRef, PackageRef:
			cp.CpIndex[i] = CpEntry{Type: ClassRef, Slot: uint16(len(cp.ClassRefs))}
			nameStr := utf8At(cp, e.u1)
			idx := stringPool.GetStringIndex(&nameStr)
			cp.ClassRefs = append(cp.ClassRefs, idx)
		case Dummy:
			// second half of a wide entry, or slot 0; leave as zero CpEntry{}
		default:
			return nil, fmt.Errorf("unrecognized constant pool tag %d at slot %d", e.tag, i)
		}
	}
	return cp, nil
}

func parseField(p *parseState, cp *CPool) (Field, error) {
	accessFlags, err := p.u2()
	if err != nil {
		return Field{}, err
	}
	nameIdx, err := p.u2()
	if err != nil {
		return Field{}, err
	}
	descIdx, err := p.u2()
	if err != nil {
		return Field{}, err
	}
	attrCount, err := p.u2()
	if err != nil {
		return Field{}, err
	}
	attrs := make([]Attr, attrCount)
	for i := range attrs {
		a, err := parseAttr(p, cp)
		if err != nil {
			return Field{}, err
		}
		attrs[i] = a
	}
	return Field{
		AccessFlags: int(accessFlags),
		Name:        utf8At(cp, nameIdx),
		Desc:        utf8At(cp, descIdx),
		IsStatic:    accessFlags&AccessFlagStatic != 0,
		Attributes:  attrs,
	}, nil
}

func parseMethod(p *parseState, cp *CPool) (*Method, error) {
	accessFlags, err := p.u2()
	if err != nil {
		return nil, err
	}
	nameIdx, err := p.u2()
	if err != nil {
		return nil, err
	}
	descIdx, err := p.u2()
	if err != nil {
		return nil, err
	}
	attrCount, err := p.u2()
	if err != nil {
		return nil, err
	}

	m := &Method{
		Name:        utf8At(cp, nameIdx),
		Desc:        utf8At(cp, descIdx),
		AccessFlags: int(accessFlags),
	}

	for i := uint16(0); i < attrCount; i++ {
		a, err := parseAttr(p, cp)
		if err != nil {
			return nil, err
		}
		if a.AttrName == "Code" {
			code, err := parseCodeAttr(a.AttrContent, cp)
			if err != nil {
				return nil, fmt.Errorf("method %s%s: %v", m.Name, m.Desc, err)
			}
			m.CodeAttr = code
		} else if a.AttrName == "Deprecated" {
			m.Deprecated = true
		} else {
			m.Attributes = append(m.Attributes, a)
		}
	}
	return m, nil
}

func parseAttr(p *parseState, cp *CPool) (Attr, error) {
	nameIdx, err := p.u2()
	if err != nil {
		return Attr{}, err
	}
	length, err := p.u4()
	if err != nil {
		return Attr{}, err
	}
	content, err := p.bytesN(int(length))
	if err != nil {
		return Attr{}, err
	}
	return Attr{AttrName: utf8At(cp, nameIdx), AttrContent: content}, nil
}

// parseCodeAttr decodes a method's Code attribute body, which is itself a
// nested mini class-file-ish structure (JVMS 4.7.3): max_stack, max_locals,
// the raw bytecode, the exception table, and nested attributes (of which
// only LineNumberTable is interpreted here; the rest are kept uninterpreted
// in CodeAttrib.Attributes).
func parseCodeAttr(content []byte, cp *CPool) (CodeAttrib, error) {
	cs := &parseState{raw: content}

	maxStack, err := cs.u2()
	if err != nil {
		return CodeAttrib{}, err
	}
	maxLocals, err := cs.u2()
	if err != nil {
		return CodeAttrib{}, err
	}
	codeLen, err := cs.u4()
	if err != nil {
		return CodeAttrib{}, err
	}
	code, err := cs.bytesN(int(codeLen))
	if err != nil {
		return CodeAttrib{}, err
	}

	excCount, err := cs.u2()
	if err != nil {
		return CodeAttrib{}, err
	}
	exceptions := make([]CodeException, excCount)
	for i := range exceptions {
		startPc, err := cs.u2()
		if err != nil {
			return CodeAttrib{}, err
		}
		endPc, err := cs.u2()
		if err != nil {
			return CodeAttrib{}, err
		}
		handlerPc, err := cs.u2()
		if err != nil {
			return CodeAttrib{}, err
		}
		catchType, err := cs.u2()
		if err != nil {
			return CodeAttrib{}, err
		}
		exceptions[i] = CodeException{
			StartPc: int(startPc), EndPc: int(endPc), HandlerPc: int(handlerPc), CatchType: catchType,
		}
	}

	attrCount, err := cs.u2()
	if err != nil {
		return CodeAttrib{}, err
	}
	var attrs []Attr
	var lineNumbers []LineNumberEntry
	for i := uint16(0); i < attrCount; i++ {
		a, err := parseAttr(cs, cp)
		if err != nil {
			return CodeAttrib{}, err
		}
		if a.AttrName == "LineNumberTable" {
			lns, err := parseLineNumberTable(a.AttrContent)
			if err != nil {
				return CodeAttrib{}, err
			}
			lineNumbers = lns
		} else {
			attrs = append(attrs, a)
		}
	}

	return CodeAttrib{
		MaxStack:        int(maxStack),
		MaxLocals:       int(maxLocals),
		Code:            code,
		Exceptions:      exceptions,
		Attributes:      attrs,
		LineNumberTable: lineNumbers,
	}, nil
}

func parseLineNumberTable(content []byte) ([]LineNumberEntry, error) {
	ls := &parseState{raw: content}
	count, err := ls.u2()
	if err != nil {
		return nil, err
	}
	out := make([]LineNumberEntry, count)
	for i := range out {
		startPc, err := ls.u2()
		if err != nil {
			return nil, err
		}
		lineNo, err := ls.u2()
		if err != nil {
			return nil, err
		}
		out[i] = LineNumberEntry{StartPC: int(startPc), SourceLine: int(lineNo)}
	}
	return out, nil
}

func float32frombits(b uint32) float32 {
	return math.Float32frombits(b)
}

func float64frombits(b uint64) float64 {
	return math.Float64frombits(b)
}

package wasm

import (
	"bytes"
	"errors"
	"fmt"

	"bytebeat/pkg/leb128"
)

var ErrMalformed = errors.New("wasm: malformed module")

// Instr is one decoded instruction.
type Instr struct {
	Offset int
	Op     byte
	Name   string
	Imm    int64
	HasImm bool
}

func (in Instr) String() string {
	if in.HasImm {
		return fmt.Sprintf("%s %d", in.Name, in.Imm)
	}
	return in.Name
}

var mnemonics = map[byte]string{
	opEnd:  "end",
	opDrop: "drop",
	0x46:   "i32.eq",
	0x48:   "i32.lt_s",
	0x4a:   "i32.gt_s",
	0x6a:   "i32.add",
	0x6b:   "i32.sub",
	0x6c:   "i32.mul",
	0x6d:   "i32.div_s",
	0x6f:   "i32.rem_s",
	0x71:   "i32.and",
	0x72:   "i32.or",
	0x73:   "i32.xor",
	0x74:   "i32.shl",
	0x75:   "i32.shr_s",
	0x76:   "i32.shr_u",
}

// Disassemble decodes the instruction subset this package emits.
func Disassemble(code []byte) ([]Instr, error) {
	var out []Instr
	for i := 0; i < len(code); {
		in := Instr{Offset: i, Op: code[i]}
		i++
		switch in.Op {
		case opLocalGet:
			v, n, err := leb128.DecodeUnsigned(code[i:])
			if err != nil {
				return nil, fmt.Errorf("local.get at %d: %w", in.Offset, err)
			}
			in.Name, in.Imm, in.HasImm = "local.get", int64(v), true
			i += n
		case opI32Const:
			v, n, err := leb128.DecodeSigned(code[i:])
			if err != nil {
				return nil, fmt.Errorf("i32.const at %d: %w", in.Offset, err)
			}
			in.Name, in.Imm, in.HasImm = "i32.const", v, true
			i += n
		default:
			name, ok := mnemonics[in.Op]
			if !ok {
				return nil, fmt.Errorf("unknown opcode 0x%02x at %d", in.Op, in.Offset)
			}
			in.Name = name
		}
		out = append(out, in)
	}
	return out, nil
}

// Section is one section of a module as laid out in the binary.
type Section struct {
	ID     byte
	Name   string // custom sections only
	Offset int    // of the payload
	Size   int
}

// Module is what ReadModule recovers from a binary.
type Module struct {
	Sections   []Section
	Exports    []string
	Body       []byte // instructions of the first function, end included
	FuncNames  map[uint64]string
	LocalNames map[uint64]string
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) u32() (uint64, error) {
	v, n, err := leb128.DecodeUnsigned(r.buf[r.pos:])
	if err != nil {
		return 0, err
	}
	r.pos += n
	return v, nil
}

func (r *reader) readByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, leb128.ErrTruncated
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) readBytes(n uint64) ([]byte, error) {
	if uint64(len(r.buf)-r.pos) < n {
		return nil, leb128.ErrTruncated
	}
	b := r.buf[r.pos : r.pos+int(n)]
	r.pos += int(n)
	return b, nil
}

func (r *reader) name() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	b, err := r.readBytes(n)
	return string(b), err
}

// ReadModule walks the sections of bin and decodes exports, the first
// function body and the name section.
func ReadModule(bin []byte) (*Module, error) {
	if len(bin) < len(header) || !bytes.Equal(bin[:len(header)], header) {
		return nil, fmt.Errorf("%w: bad header", ErrMalformed)
	}

	m := &Module{FuncNames: map[uint64]string{}, LocalNames: map[uint64]string{}}
	r := &reader{buf: bin, pos: len(header)}
	for r.pos < len(bin) {
		id, _ := r.readByte()
		size, err := r.u32()
		if err != nil {
			return nil, fmt.Errorf("%w: section size: %v", ErrMalformed, err)
		}
		payload, err := r.readBytes(size)
		if err != nil {
			return nil, fmt.Errorf("%w: section %d overruns the module", ErrMalformed, id)
		}
		sec := Section{ID: id, Offset: r.pos - int(size), Size: int(size)}
		sr := &reader{buf: payload}

		switch id {
		case SectionExport:
			err = readExports(sr, m)
		case SectionCode:
			err = readCode(sr, m)
		case SectionCustom:
			sec.Name, err = sr.name()
			if err == nil && sec.Name == "name" {
				err = readNames(sr, m)
			}
		}
		if err != nil {
			return nil, fmt.Errorf("%w: section %d: %v", ErrMalformed, id, err)
		}
		m.Sections = append(m.Sections, sec)
	}
	return m, nil
}

func readExports(r *reader, m *Module) error {
	count, err := r.u32()
	if err != nil {
		return err
	}
	for i := uint64(0); i < count; i++ {
		name, err := r.name()
		if err != nil {
			return err
		}
		if _, err := r.readByte(); err != nil {
			return err
		}
		if _, err := r.u32(); err != nil {
			return err
		}
		m.Exports = append(m.Exports, name)
	}
	return nil
}

func readCode(r *reader, m *Module) error {
	count, err := r.u32()
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}
	size, err := r.u32()
	if err != nil {
		return err
	}
	body, err := r.readBytes(size)
	if err != nil {
		return err
	}
	br := &reader{buf: body}
	groups, err := br.u32()
	if err != nil {
		return err
	}
	for i := uint64(0); i < groups; i++ {
		if _, err := br.u32(); err != nil {
			return err
		}
		if _, err := br.readByte(); err != nil {
			return err
		}
	}
	m.Body = body[br.pos:]
	return nil
}

func readNames(r *reader, m *Module) error {
	for r.pos < len(r.buf) {
		id, _ := r.readByte()
		size, err := r.u32()
		if err != nil {
			return err
		}
		payload, err := r.readBytes(size)
		if err != nil {
			return err
		}
		sr := &reader{buf: payload}
		switch id {
		case nameSubsecFunctions:
			err = readNameMap(sr, m.FuncNames)
		case nameSubsecLocals:
			var funcs uint64
			funcs, err = sr.u32()
			for i := uint64(0); err == nil && i < funcs; i++ {
				var idx uint64
				if idx, err = sr.u32(); err != nil {
					break
				}
				// only the first function's locals are kept
				target := m.LocalNames
				if idx != 0 {
					target = map[uint64]string{}
				}
				err = readNameMap(sr, target)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func readNameMap(r *reader, into map[uint64]string) error {
	count, err := r.u32()
	if err != nil {
		return err
	}
	for i := uint64(0); i < count; i++ {
		idx, err := r.u32()
		if err != nil {
			return err
		}
		name, err := r.name()
		if err != nil {
			return err
		}
		into[idx] = name
	}
	return nil
}

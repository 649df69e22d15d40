package wasm

import (
	"bytebeat/pkg/leb128"
)

// Section ids of the binary format.
const (
	SectionCustom   = 0
	SectionType     = 1
	SectionFunction = 3
	SectionExport   = 7
	SectionCode     = 10
)

const (
	typeFunc   = 0x60
	typeI32    = 0x7f
	exportFunc = 0x00

	nameSubsecFunctions = 1
	nameSubsecLocals    = 2
)

var header = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// LocalNames are the names given to the two parameters in the name section.
var LocalNames = []string{"t", "tt"}

type moduleBuilder struct {
	out []byte
}

func (b *moduleBuilder) section(id byte, payload []byte) {
	b.out = append(b.out, id)
	b.out = leb128.AppendUnsigned(b.out, uint64(len(payload)))
	b.out = append(b.out, payload...)
}

func appendName(dst []byte, name string) []byte {
	dst = leb128.AppendUnsigned(dst, uint64(len(name)))
	return append(dst, name...)
}

func appendVec(dst []byte, n int) []byte {
	return leb128.AppendUnsigned(dst, uint64(n))
}

// Module assembles the binary module around the function body.
func (fn *Function) Module() []byte {
	b := &moduleBuilder{out: append([]byte(nil), header...)}

	// (i32, i32) -> i32
	var types []byte
	types = appendVec(types, 1)
	types = append(types, typeFunc)
	types = appendVec(types, 2)
	types = append(types, typeI32, typeI32)
	types = appendVec(types, 1)
	types = append(types, typeI32)
	b.section(SectionType, types)

	var funcs []byte
	funcs = appendVec(funcs, 1)
	funcs = leb128.AppendUnsigned(funcs, 0)
	b.section(SectionFunction, funcs)

	var exports []byte
	exports = appendVec(exports, 1)
	exports = appendName(exports, ExportName)
	exports = append(exports, exportFunc)
	exports = leb128.AppendUnsigned(exports, 0)
	b.section(SectionExport, exports)

	var body []byte
	body = appendVec(body, 0) // no locals beyond the parameters
	body = append(body, fn.Code...)
	body = append(body, opEnd)

	var code []byte
	code = appendVec(code, 1)
	code = leb128.AppendUnsigned(code, uint64(len(body)))
	code = append(code, body...)
	b.section(SectionCode, code)

	b.section(SectionCustom, nameSection())

	return b.out
}

func nameSection() []byte {
	var funcNames []byte
	funcNames = appendVec(funcNames, 1)
	funcNames = leb128.AppendUnsigned(funcNames, 0)
	funcNames = appendName(funcNames, ExportName)

	var localNames []byte
	localNames = appendVec(localNames, 1)
	localNames = leb128.AppendUnsigned(localNames, 0)
	localNames = appendVec(localNames, len(LocalNames))
	for i, name := range LocalNames {
		localNames = leb128.AppendUnsigned(localNames, uint64(i))
		localNames = appendName(localNames, name)
	}

	out := appendName(nil, "name")
	out = append(out, nameSubsecFunctions)
	out = leb128.AppendUnsigned(out, uint64(len(funcNames)))
	out = append(out, funcNames...)
	out = append(out, nameSubsecLocals)
	out = leb128.AppendUnsigned(out, uint64(len(localNames)))
	out = append(out, localNames...)
	return out
}

package aggregate

import "fmt"

// Mode selects what the facade produces at finalization. In CompileAndLink
// mode the compile step supplies direct foreign contexts itself later, so
// merging them here is rejected; in LinkOnly mode the facade owns the whole
// compilation-context composition.
type Mode int

const (
	// CompileAndLink analyzes a target that compiles its own sources.
	CompileAndLink Mode = iota
	// LinkOnly analyzes a target that only links already-built inputs.
	LinkOnly
)

func (m Mode) String() string {
	if m == LinkOnly {
		return "link_only"
	}
	return "compile_and_link"
}

// RuleKind is the closed set of rule kinds a target may declare.
type RuleKind int

const (
	// KindLibrary compiles sources into a static archive.
	KindLibrary RuleKind = iota
	// KindBinary links dependencies into an executable.
	KindBinary
	// KindImport re-exports a prebuilt archive.
	KindImport
	// KindProtoLibrary compiles generated protocol sources.
	KindProtoLibrary
)

var kindNames = map[string]RuleKind{
	"library":       KindLibrary,
	"binary":        KindBinary,
	"import":        KindImport,
	"proto_library": KindProtoLibrary,
}

// ParseKind maps a manifest kind label to its RuleKind.
func ParseKind(s string) (RuleKind, error) {
	k, ok := kindNames[s]
	if !ok {
		return 0, fmt.Errorf("unknown rule kind %q", s)
	}
	return k, nil
}

func (k RuleKind) String() string {
	switch k {
	case KindLibrary:
		return "library"
	case KindBinary:
		return "binary"
	case KindImport:
		return "import"
	case KindProtoLibrary:
		return "proto_library"
	}
	return "unknown"
}

// crossConsumableKinds are the rule kinds whose produced archive may be
// handed to the cross-language bridge. Checked by equality, never by string.
var crossConsumableKinds = map[RuleKind]bool{
	KindLibrary:      true,
	KindImport:       true,
	KindProtoLibrary: true,
}

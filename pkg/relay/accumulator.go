package relay

import (
	"encoding/json"
	"log/slog"
)

// Accumulator collects contract artifacts seen during one relayed stream.
// It lives for a single request and is only used for diagnostics.
type Accumulator struct {
	ABI               json.RawMessage
	Bytecode          string
	SourceCode        string
	ConstructorParams []ConstructorParam
}

// Apply records whatever artifacts p carries, overwriting earlier values.
// Reports whether anything was captured.
func (a *Accumulator) Apply(p Payload) bool {
	switch v := p.(type) {
	case CompilerResult:
		a.ABI = v.ABI
		a.Bytecode = v.Bytecode
		return true
	case DeveloperResult:
		a.SourceCode = v.SourceCode
		return true
	case ManagerResult:
		captured := false
		if v.SourceCode != "" {
			a.SourceCode = v.SourceCode
			captured = true
		}
		if len(v.ABI) > 0 {
			a.ABI = v.ABI
			captured = true
		}
		if v.Bytecode != "" {
			a.Bytecode = v.Bytecode
			captured = true
		}
		if v.ConstructorParams != nil {
			a.ConstructorParams = v.ConstructorParams
			captured = true
		}
		return captured
	default:
		return false
	}
}

// LogValue summarises the captured artifacts by size rather than content.
func (a *Accumulator) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("abi_bytes", len(a.ABI)),
		slog.Int("bytecode_bytes", len(a.Bytecode)),
		slog.Int("source_bytes", len(a.SourceCode)),
		slog.Int("constructor_params", len(a.ConstructorParams)),
	)
}

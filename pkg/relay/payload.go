package relay

import (
	"encoding/json"

	"github.com/tidwall/gjson"
)

// Agent names emitted by the generation pipeline that carry contract artifacts.
const (
	AgentCompiler        = "Compiler"
	AgentDeveloper       = "Developer"
	AgentContractManager = "ContractManager"
)

// Status is the progress state reported in a data frame envelope.
type Status string

// Known envelope statuses. Upstream may send others; they are kept as-is.
const (
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusError      Status = "error"
	StatusSuccess    Status = "success"
	StatusRetry      Status = "retry"
)

// Envelope is the common shell of every data frame:
// {agent, status, action?, message?, data?}.
type Envelope struct {
	Agent   string
	Status  Status
	Action  string
	Message string
	Data    gjson.Result
}

// ParseEnvelope reads the envelope fields from a JSON document. raw must
// already be valid JSON; non-object documents yield an empty envelope.
func ParseEnvelope(raw []byte) Envelope {
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return Envelope{}
	}
	return Envelope{
		Agent:   doc.Get("agent").String(),
		Status:  Status(doc.Get("status").String()),
		Action:  doc.Get("action").String(),
		Message: doc.Get("message").String(),
		Data:    doc.Get("data"),
	}
}

// Payload is the agent-specific content of a data frame. The concrete type is
// selected by the envelope's (agent, status) pair.
type Payload interface {
	isPayload()
}

// CompilerResult is emitted by the Compiler on success.
type CompilerResult struct {
	ABI      json.RawMessage
	Bytecode string
}

// DeveloperResult is emitted by the Developer when code generation completes.
type DeveloperResult struct {
	SourceCode string
}

// ManagerResult is the final ContractManager summary. Every field is optional.
type ManagerResult struct {
	SourceCode        string
	ABI               json.RawMessage
	Bytecode          string
	ConstructorParams []ConstructorParam
}

// ConstructorParam describes one constructor argument suggested upstream.
type ConstructorParam struct {
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	ExampleValue json.RawMessage `json:"example_value,omitempty"`
}

// Unknown is any frame without a recognised artifact shape. It is forwarded
// like every other valid frame.
type Unknown struct {
	Agent  string
	Status Status
}

func (CompilerResult) isPayload()  {}
func (DeveloperResult) isPayload() {}
func (ManagerResult) isPayload()   {}
func (Unknown) isPayload()         {}

// Payload classifies the envelope. A recognised (agent, status) pair whose
// data does not match the expected shape degrades to Unknown.
func (e Envelope) Payload() Payload {
	switch {
	case e.Agent == AgentCompiler && (e.Status == StatusSuccess || e.Status == StatusCompleted):
		if p, ok := parseCompilerResult(e.Data); ok {
			return p
		}
	case e.Agent == AgentDeveloper && e.Status == StatusCompleted:
		if p, ok := parseDeveloperResult(e.Data); ok {
			return p
		}
	case e.Agent == AgentContractManager && e.Status == StatusCompleted:
		if p, ok := parseManagerResult(e.Data); ok {
			return p
		}
	}
	return Unknown{Agent: e.Agent, Status: e.Status}
}

func parseCompilerResult(data gjson.Result) (CompilerResult, bool) {
	if !data.IsObject() {
		return CompilerResult{}, false
	}
	abi := data.Get("abi")
	bytecode := data.Get("bytecode")
	if !abi.IsArray() || bytecode.Type != gjson.String {
		return CompilerResult{}, false
	}
	return CompilerResult{
		ABI:      json.RawMessage(abi.Raw),
		Bytecode: bytecode.String(),
	}, true
}

func parseDeveloperResult(data gjson.Result) (DeveloperResult, bool) {
	code := data.Get("contract_code")
	if !data.IsObject() || code.Type != gjson.String {
		return DeveloperResult{}, false
	}
	return DeveloperResult{SourceCode: code.String()}, true
}

func parseManagerResult(data gjson.Result) (ManagerResult, bool) {
	if !data.IsObject() {
		return ManagerResult{}, false
	}

	var out ManagerResult
	if code := data.Get("contract_code"); code.Exists() {
		if code.Type != gjson.String {
			return ManagerResult{}, false
		}
		out.SourceCode = code.String()
	}
	if abi := data.Get("abi"); abi.Exists() {
		if !abi.IsArray() {
			return ManagerResult{}, false
		}
		out.ABI = json.RawMessage(abi.Raw)
	}
	if bytecode := data.Get("bytecode"); bytecode.Exists() {
		if bytecode.Type != gjson.String {
			return ManagerResult{}, false
		}
		out.Bytecode = bytecode.String()
	}
	if params := data.Get("constructor_params"); params.Exists() {
		if !params.IsArray() {
			return ManagerResult{}, false
		}
		ok := true
		params.ForEach(func(_, p gjson.Result) bool {
			name, typ := p.Get("name"), p.Get("type")
			if !p.IsObject() || name.Type != gjson.String || typ.Type != gjson.String {
				ok = false
				return false
			}
			param := ConstructorParam{Name: name.String(), Type: typ.String()}
			if ex := p.Get("example_value"); ex.Exists() {
				param.ExampleValue = json.RawMessage(ex.Raw)
			}
			out.ConstructorParams = append(out.ConstructorParams, param)
			return true
		})
		if !ok {
			return ManagerResult{}, false
		}
	}
	return out, true
}

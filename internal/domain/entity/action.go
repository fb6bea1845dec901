package entity

import "strings"

type ParamType string

const (
	ParamTypeString ParamType = "string"
	ParamTypeInt    ParamType = "int"
	ParamTypeFloat  ParamType = "float"
)

// ParamSpec declares one parameter of an action. Schemas are declared at
// registration time, never inferred from handler signatures.
type ParamSpec struct {
	Name     string
	Type     ParamType
	Required bool
	Default  string
}

// ActionInvocation is one parsed name(arg, ...) call from an LLM reply.
type ActionInvocation struct {
	Name string
	Args []string
}

// Render produces the canonical call text used in step records and the
// transcript.
func (i ActionInvocation) Render() string {
	return i.Name + "(" + strings.Join(i.Args, ", ") + ")"
}

// ActionResult is the outcome of one executed action. Success=false implies
// Error is non-empty.
type ActionResult struct {
	Success          bool
	ExtractedContent string
	Error            string
}

// Payload returns the primary text of the result: extracted content on
// success, the error otherwise.
func (r ActionResult) Payload() string {
	if r.Success {
		return r.ExtractedContent
	}
	return r.Error
}

func Extracted(content string) ActionResult {
	return ActionResult{Success: true, ExtractedContent: content}
}

func Failed(err string) ActionResult {
	return ActionResult{Success: false, Error: err}
}

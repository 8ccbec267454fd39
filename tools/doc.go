// Package tools defines the Tool contract for LLM agents: a name, a
// description, a JSON-schema parameters definition, and a Call method
// returning a JSON result. It also provides the Registry used by an
// agent runtime to discover and invoke the tools in this repository.
package tools

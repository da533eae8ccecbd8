// Package operators maps WebNN conformance fixture operators onto graph builder calls.
//
// A fixture operator is a name plus an ordered list of single-key arguments,
// e.g. [{"input": "bnInput"}, {"mean": "bnMean"}, {"options": {"axis": 3}}].
// Each handler resolves operand names through the Context, decodes options,
// validates them and delegates to the matching webnn.GraphBuilder method.
package operators

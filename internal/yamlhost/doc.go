// Package yamlhost is a small host front end: it reads a compilation unit
// written in YAML and produces function trees together with the host type
// table the lowering engine queries.
//
//	calls:
//	  some_operation: {ok: R, err: ErrorB}
//	  ErrorA::new: {type: ErrorA}
//	functions:
//	  - name: f
//	    ok: R
//	    err: ErrorA
//	    body:
//	      - try:
//	          type: R
//	          do:
//	            - expr: {call: some_operation}
//	          catch:
//	            - error: ErrorB
//	              as: e
//	              do:
//	                - throw: {call: "ErrorA::new", args: [{lit: '"boom"', type: String}]}
//
// A call declared with err: "?" is a fallible call whose error type the host
// failed to resolve.
//
// Statements are mappings with one of the keys let (with value), expr,
// throw, block, if (with then and optional else) or try. Expressions are
// scalars for identifiers, or mappings with one of the keys ident, lit (with
// type), call (with optional args) or try.
//
// Node positions point into the source file, so diagnostics can be reported
// against it.
package yamlhost

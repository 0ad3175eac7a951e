// Package driver implements the Validation Driver (spec.md §4.6): mode
// selection, direction detection, and orchestration of the composer,
// bundler, resolver, strict injector, and validation engine behind the
// two logical operations the core exposes, resolve and validate.
//
// Modes:
//
//	Self-describing remote: no explicit schema, no local base — the
//	  composer fetches capability schemas over HTTP(S).
//	Self-describing local: no explicit schema, a local base configured —
//	  the composer maps capability schema URLs to local files.
//	Explicit: an explicit schema is given; any ucp.capabilities in the
//	  payload is ignored, and direction must be given explicitly too.
//
// Direction determination follows the state machine in spec.md §4.6
// exactly: an explicit flag wins; an explicit schema without a flag is a
// UsageError; otherwise direction is inferred from the payload's
// self-description fields.
package driver

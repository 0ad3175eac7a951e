// Package strictify implements the Strict Injector (spec.md §4.5): it
// recursively closes object schemas by inserting "additionalProperties":
// false wherever it is missing or explicitly true.
//
// A schema node counts as an object schema when it has a "properties" key
// or an explicit "type": "object". additionalProperties that is already
// false, or is itself a schema (for validated extra keys), is left alone.
//
// Known limitation, carried from spec.md §4.5 rather than fixed: under
// allOf, each branch still only enforces its own closure, so a composed
// schema rejects fields contributed by sibling branches. Inject still
// performs the transformation; the limitation is documented, not patched
// around.
package strictify

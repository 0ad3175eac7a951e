// Package bundler implements the Reference Bundler (spec.md §4.2): it
// inlines external-document $ref targets into a self-contained schema while
// leaving the bundled document's own internal refs ("#" and "#/...")
// untouched.
//
// Reference taxonomy:
//
//	"#"                       self whole-document ref, preserved verbatim
//	"#/path/..."              internal ref, preserved verbatim
//	"relative.json"           external, loaded and inlined whole
//	"relative.json#/path/..." external, loaded, JSON-Pointer navigated, inlined
//	absolute URL (same rules) external, fetched and inlined
//
// Inside an external document that is being inlined, "#" and "#/..." refs
// point at that document, so they are resolved against it and inlined in
// place too. Any other ref, including a plain-name fragment such as "#name",
// takes the external-ref path.
//
// A cycle is a $ref that targets a (document, pointer) location already
// being expanded. A "#" ref back to a document already being expanded is
// permitted and left as a bare {"$ref": "#"}; any other cycle is a fatal
// SchemaError.
package bundler

// Package capability implements the Capability Composer and URL→Local
// Mapper (spec.md §4.3/§4.4): discovering a root capability and its
// extensions from a self-describing payload, loading their schemas, and
// composing them into a single allOf schema.
//
// Direction inference: a payload carrying "ucp.capabilities" is a
// response; a payload carrying "ucp.meta.profile" is a request. A payload
// with neither is not self-describing and Compose fails.
//
// Graph construction requires exactly one root entry (no "extends"), every
// "extends" naming an existing entry, and every entry transitively
// reaching the root. Composition walks extensions in declaration order of
// ucp.capabilities keys and builds
//
//	{ "allOf": [ D_root, D_ext1.$defs[root_name], D_ext2.$defs[root_name], ... ] }
//
// using the empty-object schema for any extension missing $defs[root_name].
package capability

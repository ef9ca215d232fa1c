// Package index resolves the names operators type (app ids, app names and
// server names) against a cached map built from app descriptor files.
//
// Descriptors are YAML files named <app_id>.yaml. The built-in copies live
// in the data directory and user overrides in the config directory; an
// override replaces the built-in descriptor for the same app id entirely.
//
// The index file, app_index.yaml, maps each app id to its app names and
// the ordered server names of each app:
//
//	90:
//	  cstrike: [cstrike]
//	  czero: [czero]
//	232370:
//	  hl2dm: [hl2dm]
//
// It is rebuilt wholesale by Update with a plain write. Concurrent
// invocations are not coordinated; the last writer wins.
package index

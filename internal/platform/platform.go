// Package platform resolves platform-specific filesystem roots used when
// remapping SDK-relative declarations to absolute paths.
package platform

import "path"

// SDK locates the platform SDK a target compiles against.
type SDK struct {
	// Root is the SDK installation root, e.g. "/" for the host toolchain.
	Root string
}

// UsrInclude returns the absolute path of an SDK-relative system include
// directory under the SDK's usr/include root.
func (s SDK) UsrInclude(rel string) string {
	return path.Join(s.Root, "usr", "include", rel)
}

// Default returns the host toolchain SDK.
func Default() SDK {
	return SDK{Root: "/"}
}

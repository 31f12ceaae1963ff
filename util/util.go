/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package util holds small, dependency-free string conversions shared
// across packages that would otherwise need to import each other just for
// a one-line helper -- name mangling between the internal slash-form class
// names (JVMS 4.2.1, "java/lang/String") and the dot-form Java source names
// users expect in log lines and exception messages ("java.lang.String").
package util

import "strings"

// ConvertInternalClassNameToUserFormat replaces the internal '/' separators
// with '.', matching how javac and the reference JVM report class names in
// stack traces and diagnostics.
func ConvertInternalClassNameToUserFormat(className string) string {
	return strings.ReplaceAll(className, "/", ".")
}

// ConvertClassFilenameToInternalFormat does the reverse: it takes a
// dot-form or filesystem-style class name and produces the internal
// slash-form used as a constant-pool / method-area key.
func ConvertClassFilenameToInternalFormat(className string) string {
	name := strings.ReplaceAll(className, "\\", "/")
	name = strings.TrimSuffix(name, ".class")
	return strings.ReplaceAll(name, ".", "/")
}

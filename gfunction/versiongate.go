/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package gfunction

import (
	"fmt"

	"golang.org/x/mod/semver"

	"tessera/globals"
)

// minJavaVersion gates a g-function registration by the running VM's
// java.specification.version, e.g. a Load_* function that wants to skip
// registering a method signature introduced after Java 11 calls
// AvailableAt("v11") and only merges the entry into MethodSignatures when
// it reports true. golang.org/x/mod/semver requires its arguments in
// "vMAJOR[.MINOR]" form, hence the leading "v".
func AvailableAt(minJavaVersion string) bool {
	current := fmt.Sprintf("v%d", globals.GetGlobalRef().MaxJavaVersion)
	return semver.Compare(current, minJavaVersion) >= 0
}

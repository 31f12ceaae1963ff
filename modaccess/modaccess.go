/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package modaccess implements the module-system access checks spec.md
// §4.12 "Module access" requires on reflective access: same-module and
// setAccessible(true) shortcuts, named export/open grants, the ALL-UNNAMED
// fallback, and the implicit grant system modules receive so bootstrap
// classes never deadlock on their own module's access table.
package modaccess

import (
	"fmt"
	"strings"
	"sync"
)

// AllUnnamed is the pseudo-module name --add-opens/--add-exports use to mean
// "every unnamed (classpath, not module-path) module".
const AllUnnamed = "ALL-UNNAMED"

// Grant is one export-or-open triple: source module's package is visible
// (export) or reflectively writable (open) by target.
type Grant struct {
	Source  string
	Package string
	Target  string
	Open    bool // false: export only (compile/link-time read); true: opens (deep reflection)
}

// Policy is the VM's module-access table: declared module-info exports/opens
// plus the CLI-supplied --add-exports/--add-opens grants layered on top.
type Policy struct {
	mu     sync.RWMutex
	grants []Grant
}

// NewPolicy returns an empty access policy.
func NewPolicy() *Policy {
	return &Policy{}
}

// Default is the VM's process-wide module-access policy, populated from the
// command line once at startup by cmd/tessera; no other package consults
// it.
var Default = NewPolicy()

// Grant records one export or open triple, e.g. as declared by a module's
// module-info.class or the CLI.
func (p *Policy) Grant(g Grant) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.grants = append(p.grants, g)
}

// ParseAddFlag parses a --add-opens/--add-exports argument of the form
// "source/package=target1,target2" into one Grant per target, per JVMS
// launcher syntax (spec.md §6 CLI surface).
func ParseAddFlag(raw string, open bool) ([]Grant, error) {
	srcPkg, targets, ok := strings.Cut(raw, "=")
	if !ok || targets == "" {
		return nil, fmt.Errorf("modaccess: malformed add-%s value %q, want source/package=target", kindWord(open), raw)
	}
	source, pkg, ok := strings.Cut(srcPkg, "/")
	if !ok || source == "" || pkg == "" {
		return nil, fmt.Errorf("modaccess: malformed add-%s value %q, want source/package=target", kindWord(open), raw)
	}
	var grants []Grant
	for _, target := range strings.Split(targets, ",") {
		target = strings.TrimSpace(target)
		if target == "" {
			continue
		}
		grants = append(grants, Grant{Source: source, Package: pkg, Target: target, Open: open})
	}
	if len(grants) == 0 {
		return nil, fmt.Errorf("modaccess: add-%s value %q names no targets", kindWord(open), raw)
	}
	return grants, nil
}

func kindWord(open bool) string {
	if open {
		return "opens"
	}
	return "exports"
}

// LoadCLIGrants parses and records every --add-opens/--add-exports value
// collected off the command line (globals.Globals.AddOpensRaw/AddExportsRaw).
func (p *Policy) LoadCLIGrants(addOpens, addExports []string) error {
	for _, raw := range addOpens {
		grants, err := ParseAddFlag(raw, true)
		if err != nil {
			return err
		}
		for _, g := range grants {
			p.Grant(g)
		}
	}
	for _, raw := range addExports {
		grants, err := ParseAddFlag(raw, false)
		if err != nil {
			return err
		}
		for _, g := range grants {
			p.Grant(g)
		}
	}
	return nil
}

// isSystemModule reports whether name is one of the platform module
// prefixes spec.md §4.12 grants implicit access to, avoiding a bootstrap
// cycle where java.base's own early classes can't yet consult a fully
// populated access table.
func isSystemModule(name string) bool {
	for _, prefix := range []string{"java.", "jdk.", "sun.", "com.sun."} {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// CanAccess reports whether callerModule may reflectively access pkg in
// targetModule, per spec.md §4.12's four grant rules. setAccessibleOverride
// models a member's setAccessible(true) call having already been made.
func (p *Policy) CanAccess(callerModule, targetModule, pkg string, setAccessibleOverride, deep bool) bool {
	if callerModule == targetModule {
		return true
	}
	if setAccessibleOverride {
		return true
	}
	if isSystemModule(targetModule) && isSystemModule(callerModule) {
		return true
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, g := range p.grants {
		if g.Source != targetModule || g.Package != pkg {
			continue
		}
		if deep && !g.Open {
			continue // deep reflection needs an opens grant, not just exports
		}
		if g.Target == callerModule || g.Target == AllUnnamed {
			return true
		}
	}
	return false
}

// IsExported is CanAccess for ordinary (non-reflective) access: same-module,
// grant-to-caller, or grant-to-ALL-UNNAMED, without requiring an opens grant.
func (p *Policy) IsExported(callerModule, targetModule, pkg string) bool {
	return p.CanAccess(callerModule, targetModule, pkg, false, false)
}

// IsOpen is CanAccess for deep reflection (setAccessible-gated field/method
// access), which additionally requires the grant backing it to be an opens
// (not merely an exports) grant.
func (p *Policy) IsOpen(callerModule, targetModule, pkg string, setAccessibleOverride bool) bool {
	return p.CanAccess(callerModule, targetModule, pkg, setAccessibleOverride, true)
}

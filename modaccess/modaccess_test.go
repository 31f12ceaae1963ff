/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package modaccess

import "testing"

func TestSameModuleAlwaysAllowed(t *testing.T) {
	p := NewPolicy()
	if !p.IsExported("my.module", "my.module", "com.example.internal") {
		t.Errorf("same-module access should always be allowed")
	}
}

func TestSetAccessibleOverride(t *testing.T) {
	p := NewPolicy()
	if p.IsOpen("my.module", "java.desktop", "sun.awt", false) {
		t.Errorf("expected no access without a grant or setAccessible override")
	}
	if !p.IsOpen("my.module", "java.desktop", "sun.awt", true) {
		t.Errorf("setAccessible(true) should bypass the module system")
	}
}

func TestSystemModulesGrantedImplicitAccess(t *testing.T) {
	p := NewPolicy()
	if !p.IsExported("jdk.internal", "java.base", "jdk.internal.misc") {
		t.Errorf("system modules should have implicit access to each other")
	}
	if p.IsExported("my.module", "java.base", "jdk.internal.misc") {
		t.Errorf("application modules should not get the system-module implicit grant")
	}
}

func TestExportGrantToNamedTarget(t *testing.T) {
	p := NewPolicy()
	p.Grant(Grant{Source: "java.base", Package: "java.lang.reflect", Target: "my.module", Open: false})

	if !p.IsExported("my.module", "java.base", "java.lang.reflect") {
		t.Errorf("expected export grant to be visible to its named target")
	}
	if p.IsExported("other.module", "java.base", "java.lang.reflect") {
		t.Errorf("export grant should not apply to an unlisted module")
	}
}

func TestExportDoesNotGrantDeepReflection(t *testing.T) {
	p := NewPolicy()
	p.Grant(Grant{Source: "java.base", Package: "java.lang.reflect", Target: "my.module", Open: false})

	if p.IsOpen("my.module", "java.base", "java.lang.reflect", false) {
		t.Errorf("an exports-only grant should not satisfy a deep-reflection (opens) check")
	}
}

func TestOpenGrantAllowsDeepReflection(t *testing.T) {
	p := NewPolicy()
	p.Grant(Grant{Source: "java.base", Package: "sun.nio.ch", Target: "my.module", Open: true})

	if !p.IsOpen("my.module", "java.base", "sun.nio.ch", false) {
		t.Errorf("expected opens grant to satisfy deep reflection")
	}
	if !p.IsExported("my.module", "java.base", "sun.nio.ch") {
		t.Errorf("an opens grant should satisfy a plain export check too")
	}
}

func TestAllUnnamedFallback(t *testing.T) {
	p := NewPolicy()
	p.Grant(Grant{Source: "java.base", Package: "java.lang.reflect", Target: AllUnnamed, Open: true})

	if !p.IsOpen("any.classpath.module", "java.base", "java.lang.reflect", false) {
		t.Errorf("ALL-UNNAMED grant should open the package to every unnamed module")
	}
}

func TestParseAddFlag(t *testing.T) {
	grants, err := ParseAddFlag("java.base/java.lang.reflect=ALL-UNNAMED", true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grants) != 1 {
		t.Fatalf("expected 1 grant, got %d", len(grants))
	}
	g := grants[0]
	if g.Source != "java.base" || g.Package != "java.lang.reflect" || g.Target != AllUnnamed || !g.Open {
		t.Errorf("unexpected grant: %+v", g)
	}
}

func TestParseAddFlagMultipleTargets(t *testing.T) {
	grants, err := ParseAddFlag("java.base/sun.nio.ch=my.module,other.module", false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(grants) != 2 {
		t.Fatalf("expected 2 grants, got %d", len(grants))
	}
	if grants[0].Open || grants[1].Open {
		t.Errorf("--add-exports grants should not be marked Open")
	}
}

func TestParseAddFlagMalformed(t *testing.T) {
	cases := []string{
		"java.base=ALL-UNNAMED",      // missing package (no '/')
		"java.base/java.lang.reflect", // missing '='
		"java.base/java.lang.reflect=",
	}
	for _, c := range cases {
		if _, err := ParseAddFlag(c, false); err == nil {
			t.Errorf("expected error parsing malformed add-flag %q", c)
		}
	}
}

func TestLoadCLIGrants(t *testing.T) {
	p := NewPolicy()
	err := p.LoadCLIGrants(
		[]string{"java.base/java.lang.reflect=ALL-UNNAMED"},
		[]string{"java.base/java.lang.invoke=my.module"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.IsOpen("anything", "java.base", "java.lang.reflect", false) {
		t.Errorf("expected the add-opens grant to be loaded")
	}
	if !p.IsExported("my.module", "java.base", "java.lang.invoke") {
		t.Errorf("expected the add-exports grant to be loaded")
	}
}

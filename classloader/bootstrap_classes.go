/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"tessera/log"
	"tessera/stringPool"
)

// LoadBaseClasses loads the synthetic java.lang bootstrap classes into the
// method area. It must run after Init() and before any bytecode that refers
// to java/lang/Object, java/lang/String, or their kin by name -- tests that
// hand-build a CPool referencing these classes call it directly rather than
// loading a real entry-point class first.
func LoadBaseClasses() {
	for className := range syntheticBootstrapClasses {
		if err := LoadClassFromNameOnly(className); err != nil {
			_ = log.Log("LoadBaseClasses: failed to load "+className+": "+err.Error(), log.SEVERE)
		}
	}
}

// synthesizeBootstrapClass builds a minimal, linked ClData for one of the
// handful of java.lang classes the VM must have available before any real
// class file has been read -- java/lang/Object above all, since every other
// class's superclass chain terminates there. Real JDK jmods are not shipped
// with this VM; gfunction supplies the actual behavior for these classes'
// methods as intrinsics, so the synthetic class body only needs to declare
// shape (fields, superclass), not bytecode.
func synthesizeBootstrapClass(className string) *ClData {
	def, ok := syntheticBootstrapClasses[className]
	if !ok {
		return nil
	}

	cd := &ClData{
		Name:        className,
		Superclass:  def.super,
		MethodTable: make(map[string]*Method),
		Access: AccessFlags{
			ClassIsPublic: true,
			ClassIsSuper:  true,
			ClassIsFinal:  def.final,
		},
	}
	nameCopy := className
	cd.NameIndex = stringPool.GetStringIndex(&nameCopy)
	if def.super != "" {
		superCopy := def.super
		cd.SuperclassIndex = stringPool.GetStringIndex(&superCopy)
	}
	for _, f := range def.fields {
		cd.Fields = append(cd.Fields, Field{Name: f.name, Desc: f.desc, IsStatic: f.static})
	}
	cd.Pkg = pkgOf(className)
	return cd
}

type syntheticField struct {
	name   string
	desc   string
	static bool
}

type syntheticClassDef struct {
	super  string
	final  bool
	fields []syntheticField
}

var syntheticBootstrapClasses = map[string]syntheticClassDef{
	"java/lang/Object": {super: ""},
	"java/lang/String": {
		super: "java/lang/Object",
		final: true,
		fields: []syntheticField{
			{name: "value", desc: "[B"},
		},
	},
	"java/lang/Class": {
		super:  "java/lang/Object",
		final:  true,
		fields: []syntheticField{{name: "name", desc: "Ljava/lang/String;"}},
	},
	"java/lang/Throwable": {
		super: "java/lang/Object",
		fields: []syntheticField{
			{name: "detailMessage", desc: "Ljava/lang/String;"},
			{name: "cause", desc: "Ljava/lang/Throwable;"},
			{name: "stackTrace", desc: "[Ljava/lang/StackTraceElement;"},
		},
	},
	"java/lang/Exception":       {super: "java/lang/Throwable"},
	"java/lang/RuntimeException": {super: "java/lang/Exception"},
	"java/lang/Error":           {super: "java/lang/Throwable"},
	"java/lang/System":          {super: "java/lang/Object", final: true},
	"java/lang/Thread":          {super: "java/lang/Object"},
	"java/lang/Number":          {super: "java/lang/Object"},
	"java/lang/Integer":         {super: "java/lang/Number", final: true, fields: []syntheticField{{name: "value", desc: "I"}}},
	"java/lang/Long":            {super: "java/lang/Number", final: true, fields: []syntheticField{{name: "value", desc: "J"}}},
	"java/lang/Double":          {super: "java/lang/Number", final: true, fields: []syntheticField{{name: "value", desc: "D"}}},
	"java/lang/Float":           {super: "java/lang/Number", final: true, fields: []syntheticField{{name: "value", desc: "F"}}},
	"java/lang/Boolean":         {super: "java/lang/Object", final: true, fields: []syntheticField{{name: "value", desc: "Z"}}},
	"java/lang/Character":       {super: "java/lang/Object", final: true, fields: []syntheticField{{name: "value", desc: "C"}}},
}

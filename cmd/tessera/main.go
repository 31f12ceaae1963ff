/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Command tessera is the VM's command-line launcher: parse the command
// line, configure the classpath and module-access policy, load and run a
// class's main(String[]) method, and translate the outcome into a process
// exit code drawn from package shutdown's exit-status values.
package main

import (
	"fmt"
	"os"

	"tessera/classloader"
	"tessera/config"
	"tessera/gfunction"
	"tessera/globals"
	"tessera/jimage"
	"tessera/jvm"
	"tessera/log"
	"tessera/modaccess"
	"tessera/shutdown"
	"tessera/util"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run does the actual work and returns an O/S exit code, which main hands
// to os.Exit. run itself never calls os.Exit or shutdown.Exit, so each of
// its error paths reports its non-zero code simply by returning it.
func run(args []string) int {
	opts, err := config.ParseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if opts.ShowVersion {
		g := globals.InitGlobals("tessera")
		fmt.Printf("tessera %s (Java %d)\n", g.Version, g.MaxJavaVersion)
		return 0
	}
	if opts.ClassName == "" {
		fmt.Fprintln(os.Stderr, "Usage: tessera [options] class [args...]")
		return 1
	}

	g := globals.InitGlobals("tessera")
	log.Init()

	if err := config.Apply(opts, g); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if err := modaccess.Default.LoadCLIGrants(g.AddOpensRaw, g.AddExportsRaw); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// Wire the jimage reader into classloader's classpath-entry hook; this
	// import is the only place outside package jimage itself that needs to
	// know the reader exists, keeping classloader's own dependency surface
	// limited to the function-pointer contract it already declares.
	classloader.JimageClassReader = jimage.ReadClass

	if err := classloader.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(shutdown.UNKNOWN_ERROR)
	}
	classloader.LoadBaseClasses()
	classloader.JmodMapInit()
	gfunction.MethodSignaturesInit()

	className := util.ConvertClassFilenameToInternalFormat(opts.ClassName)
	if err := jvm.RunMain(className, opts.AppArgs); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return int(shutdown.JVM_EXCEPTION)
	}
	return int(shutdown.OK)
}

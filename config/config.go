/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

// Package config turns the command line into the bootstrap state package
// globals holds (spec.md §3), and prints that state back out for
// diagnostics. CLI parsing uses github.com/spf13/pflag rather than the
// standard library's flag package so long-form GNU-style options like
// --add-opens and repeatable -D work the way the real launcher's do.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"tessera/globals"
)

// Options is everything ParseArgs pulled off the command line, before it's
// applied to a *globals.Globals.
type Options struct {
	Classpath    string
	AddOpens     []string
	AddExports   []string
	Properties   []string // "-Dkey=value" entries, key=value already split off the flag
	Verify       bool
	ShowVersion  bool
	ClassName    string
	AppArgs      []string
}

// ParseArgs parses a `java`-style command line: [options] class [app args].
// Everything after the class name, including anything that looks like a
// flag, is passed through verbatim as the target program's own arguments.
func ParseArgs(args []string) (*Options, error) {
	fs := pflag.NewFlagSet("tessera", pflag.ContinueOnError)
	fs.SetInterspersed(false) // stop parsing flags at the first non-flag (the class name)

	opts := &Options{}
	fs.StringVar(&opts.Classpath, "classpath", "", "classpath entries, separated by the platform's path separator (also -cp)")
	fs.StringArrayVar(&opts.AddOpens, "add-opens", nil, "module/package=target[,target...], opened for deep reflection")
	fs.StringArrayVar(&opts.AddExports, "add-exports", nil, "module/package=target[,target...], exported for compile-time access")
	fs.StringArrayVarP(&opts.Properties, "define", "D", nil, "key=value, set as a system property")
	fs.BoolVar(&opts.Verify, "verify", true, "verify mode recorded in the VM configuration (no bytecode verifier runs)")
	fs.BoolVar(&opts.ShowVersion, "version", false, "print version information and exit")

	// pflag shorthands are one character, so java's "-cp" is rewritten to
	// "--classpath" among the options that precede the class name.
	args = append([]string(nil), args...)
	for i := 0; i < len(args) && strings.HasPrefix(args[i], "-"); i++ {
		switch args[i] {
		case "-cp":
			args[i] = "--classpath"
			i++
		case "--classpath", "--add-opens", "--add-exports", "-D", "--define":
			i++
		}
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	rest := fs.Args()
	if len(rest) > 0 {
		opts.ClassName = rest[0]
		opts.AppArgs = rest[1:]
	}
	return opts, nil
}

// Apply copies parsed options into the process-wide Globals: the classpath
// is split on the OS path-list separator into ordered ClasspathEntry values
// (directories, archives, or, when the entry ends in a jimage-style name, a
// jimage module image), -D flags populate SystemProperties, and --add-opens
// / --add-exports are stashed as raw strings for package modaccess to parse
// once a Policy exists.
func Apply(opts *Options, g *globals.Globals) error {
	g.Classpath = nil
	for _, entry := range strings.Split(opts.Classpath, string(os.PathListSeparator)) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		g.Classpath = append(g.Classpath, globals.ClasspathEntry{
			Kind: classpathKind(entry),
			Path: entry,
		})
	}

	g.VerifyMode = opts.Verify
	g.AddOpensRaw = append(g.AddOpensRaw, opts.AddOpens...)
	g.AddExportsRaw = append(g.AddExportsRaw, opts.AddExports...)

	if g.SystemProperties == nil {
		g.SystemProperties = make(map[string]string)
	}
	for _, def := range opts.Properties {
		key, value, ok := strings.Cut(def, "=")
		if !ok {
			return fmt.Errorf("config: malformed -D flag %q, want key=value", def)
		}
		g.SystemProperties[key] = value
	}
	return nil
}

// classpathKind infers a classpath entry's kind from its path, per
// spec.md §4.3: a "modules" file (the jimage packaging every JDK since 9
// ships its platform classes in) is read as a jimage image, a .jar/.jmod/.zip
// path is read as an archive, an http:// or https:// entry is a URL, and
// anything else is treated as a directory of .class files. Only the text of
// the entry is inspected; the filesystem is not consulted.
func classpathKind(path string) globals.ClasspathEntryKind {
	switch {
	case strings.HasSuffix(path, "modules"):
		return globals.EntryJimage
	case strings.HasSuffix(path, ".jar"), strings.HasSuffix(path, ".jmod"), strings.HasSuffix(path, ".zip"):
		return globals.EntryArchive
	case strings.HasPrefix(path, "http://"), strings.HasPrefix(path, "https://"):
		return globals.EntryURL
	default:
		return globals.EntryDirectory
	}
}

// DumpConfig writes the VM's current bootstrap configuration to w, called by
// shutdown.Exit on any non-normal exit so a crash report includes the
// classpath and module-access flags that were in effect.
func DumpConfig(w io.Writer) {
	g := globals.GetGlobalRef()
	fmt.Fprintf(w, "tessera %s (Java %d)\n", g.Version, g.MaxJavaVersion)
	fmt.Fprintf(w, "  java.home: %s\n", g.JavaHome)
	fmt.Fprintf(w, "  verify: %v\n", g.VerifyMode)
	fmt.Fprintf(w, "  classpath:\n")
	for _, entry := range g.Classpath {
		fmt.Fprintf(w, "    [%s] %s\n", classpathKindName(entry.Kind), entry.Path)
	}
	for _, o := range g.AddOpensRaw {
		fmt.Fprintf(w, "  --add-opens %s\n", o)
	}
	for _, e := range g.AddExportsRaw {
		fmt.Fprintf(w, "  --add-exports %s\n", e)
	}
	for k, v := range g.SystemProperties {
		fmt.Fprintf(w, "  -D%s=%s\n", k, v)
	}
}

func classpathKindName(k globals.ClasspathEntryKind) string {
	switch k {
	case globals.EntryDirectory:
		return "dir"
	case globals.EntryArchive:
		return "archive"
	case globals.EntryURL:
		return "url"
	case globals.EntryJimage:
		return "jimage"
	default:
		return "unknown"
	}
}

/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"encoding/gob"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"tessera/globals"
	"tessera/log"
)

// jmodMap associates a package name (slash form, e.g. "java/lang") with the
// name of the JDK .jmod file that would contain its classes, per spec.md §4.2's jimage
// module-image model. Building this map by walking a real $JAVA_HOME/jmods
// tree is expensive, so it's built once per machine and cached as a gob file
// under TesseraHome -- mirroring the teacher's own caching strategy.
var (
	jmodMapMu   sync.RWMutex
	jmodMap     map[string]string
	jmodMapGob  bool // true if the last JmodMapInit call loaded from cache
)

const jmodMapGobName = "jmodmap.gob"

// wellKnownJmodPackages seeds the map when no real JDK jmods directory is
// available to scan (true of this sandboxed build environment, and of any
// machine running with a stripped-down JRE) -- a minimal but representative
// slice of the real JDK's java.base/java.desktop package-to-module split.
var wellKnownJmodPackages = map[string]string{
	"java/lang":                                        "java.base.jmod",
	"java/lang/invoke":                                 "java.base.jmod",
	"java/lang/reflect":                                "java.base.jmod",
	"java/lang/annotation":                              "java.base.jmod",
	"java/util":                                        "java.base.jmod",
	"java/util/concurrent":                              "java.base.jmod",
	"java/util/concurrent/atomic":                       "java.base.jmod",
	"java/util/function":                               "java.base.jmod",
	"java/util/stream":                                 "java.base.jmod",
	"java/io":                                          "java.base.jmod",
	"java/nio":                                         "java.base.jmod",
	"java/nio/file":                                    "java.base.jmod",
	"java/net":                                         "java.base.jmod",
	"java/math":                                        "java.base.jmod",
	"java/text":                                        "java.base.jmod",
	"java/time":                                        "java.base.jmod",
	"java/security":                                     "java.base.jmod",
	"com/sun/accessibility/internal/resources":          "java.desktop.jmod",
	"java/awt":                                          "java.desktop.jmod",
	"java/awt/event":                                    "java.desktop.jmod",
	"javax/swing":                                       "java.desktop.jmod",
	"javax/accessibility":                               "java.desktop.jmod",
	"java/applet":                                       "java.desktop.jmod",
}

// JmodMapInit populates the module-mapping table, either from a real
// $TESSERA_HOME/jmods tree (if present), from a cached gob file written by a
// previous run, or from the built-in fallback table.
func JmodMapInit() {
	jmodMapMu.Lock()
	defer jmodMapMu.Unlock()

	home := globals.TesseraHome()
	if home == "" {
		home = defaultTesseraHome()
		globals.GetGlobalRef().TesseraHome = home
	}
	if err := os.MkdirAll(home, 0o755); err != nil {
		_ = log.Log("JmodMapInit: cannot create TESSERA_HOME "+home+": "+err.Error(), log.WARNING)
	}

	gobPath := filepath.Join(home, jmodMapGobName)
	if loaded := loadJmodMapGob(gobPath); loaded != nil {
		jmodMap = loaded
		jmodMapGob = true
		_ = log.Log("JmodMapInit: loaded cached jmod map from "+gobPath, log.CONFIG)
		return
	}

	jmodMapGob = false
	jmodsDir := filepath.Join(home, "jmods")
	scanned := scanJmodsDirectory(jmodsDir)
	if len(scanned) > 0 {
		jmodMap = scanned
	} else {
		jmodMap = make(map[string]string, len(wellKnownJmodPackages))
		for pkg, jmod := range wellKnownJmodPackages {
			jmodMap[pkg] = jmod
		}
	}

	if err := saveJmodMapGob(gobPath, jmodMap); err != nil {
		_ = log.Log("JmodMapInit: could not cache jmod map: "+err.Error(), log.WARNING)
	}
}

func defaultTesseraHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.TempDir()
	}
	return filepath.Join(home, ".tessera")
}

// scanJmodsDirectory walks real *.jmod files, recording each package
// directory it finds under classes/ as belonging to that jmod. Real
// jmod files are themselves zip archives with a "classes/" root; this does
// not attempt a full jimage-format scan, since jmods (unlike lib/modules)
// are ordinary zips.
func scanJmodsDirectory(dir string) map[string]string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	result := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".jmod") {
			continue
		}
		pkgs, err := ClassNamesInArchive(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		for _, className := range pkgs {
			pkg := pkgOf(strings.TrimPrefix(className, "classes/"))
			if pkg != "" {
				result[pkg] = e.Name()
			}
		}
	}
	return result
}

// JmodMapFetch returns the jmod file name for the package containing
// className, or "" if unknown.
func JmodMapFetch(className string) string {
	jmodMapMu.RLock()
	defer jmodMapMu.RUnlock()
	if jmodMap == nil {
		return ""
	}
	if v, ok := jmodMap[className]; ok {
		return v
	}
	return jmodMap[pkgOf(className)]
}

// JmodMapSize returns the number of package entries currently mapped.
func JmodMapSize() int {
	jmodMapMu.RLock()
	defer jmodMapMu.RUnlock()
	return len(jmodMap)
}

// JmodMapFoundGob reports whether the most recent JmodMapInit call populated
// the map from an on-disk cache rather than rebuilding it.
func JmodMapFoundGob() bool {
	jmodMapMu.RLock()
	defer jmodMapMu.RUnlock()
	return jmodMapGob
}

func loadJmodMapGob(path string) map[string]string {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var m map[string]string
	if err := gob.NewDecoder(f).Decode(&m); err != nil {
		return nil
	}
	return m
}

func saveJmodMapGob(path string, m map[string]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gob.NewEncoder(f).Encode(m)
}

/*
 * Tessera JVM - A Java virtual machine
 * Licensed under Mozilla Public License 2.0 (MPL 2.0)
 */

package classloader

import (
	"archive/zip"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"tessera/globals"
)

// readClassBytes resolves className (slash-form, e.g. "java/lang/String")
// against the ordered classpath and returns its raw .class bytes, trying
// each entry in order and returning the first hit -- spec.md §4.3's
// "classpath entries are consulted in configured order" rule.
func readClassBytes(className string) ([]byte, error) {
	g := globals.GetGlobalRef()
	relPath := className + ".class"

	for _, entry := range g.Classpath {
		var b []byte
		var err error
		switch entry.Kind {
		case globals.EntryDirectory:
			b, err = readFromDirectory(entry.Path, relPath)
		case globals.EntryArchive:
			b, err = readFromArchive(entry.Path, relPath)
		case globals.EntryURL:
			b, err = readFromURL(entry.Path, relPath)
		case globals.EntryJimage:
			b, err = readFromJimage(entry.Path, className)
		}
		if err == nil {
			return b, nil
		}
	}
	return nil, &ClassNotFoundError{ClassName: className}
}

// ClassNotFoundError is raised when no classpath entry contains className.
// Callers receive it as an ordinary Go error; no package turns it into a
// thrown Java exception.
type ClassNotFoundError struct {
	ClassName string
}

func (e *ClassNotFoundError) Error() string {
	return "class not found: " + e.ClassName
}

func readFromDirectory(dir, relPath string) ([]byte, error) {
	full := filepath.Join(dir, filepath.FromSlash(relPath))
	return os.ReadFile(full)
}

func readFromArchive(archivePath, relPath string) ([]byte, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name == relPath {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("%s not found in archive %s", relPath, archivePath)
}

var httpClient = &http.Client{Timeout: 30 * time.Second}

func readFromURL(baseURL, relPath string) ([]byte, error) {
	url := strings.TrimSuffix(baseURL, "/") + "/" + relPath
	resp, err := httpClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// readFromJimage reads className's bytes out of a jimage-packaged module
// image. The actual jimage decoding lives in package jimage; this is kept as
// a thin adapter so classloader doesn't need to import jimage for anything
// but this one call, avoiding an import cycle should jimage ever want to log
// class-resolution diagnostics through classloader's helpers.
var JimageClassReader func(imagePath, className string) ([]byte, error)

func readFromJimage(imagePath, className string) ([]byte, error) {
	if JimageClassReader == nil {
		return nil, fmt.Errorf("no jimage reader registered for %s", imagePath)
	}
	return JimageClassReader(imagePath, className)
}

// ClassNamesInArchive lists every .class entry in a jar/zip, stripped of the
// ".class" suffix, for -jar/-cp wildcard expansion and diagnostics.
func ClassNamesInArchive(archivePath string) ([]string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var names []string
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, ".class") {
			names = append(names, strings.TrimSuffix(f.Name, ".class"))
		}
	}
	return names, nil
}

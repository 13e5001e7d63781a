package pkg

import (
	"fmt"
	"go/ast"
	"sort"
	"strings"

	gophon "github.com/lonegunmanb/gophon/pkg"
)

// VerifyGeneratedPackage scans a written package and checks that it declares the
// builder type and constructor of every index entry, and the aggregate Index.
func VerifyGeneratedPackage(dir, pkgPath string, index *ServiceIndex) error {
	packageInfo, err := gophon.ScanSinglePackage(dir, pkgPath)
	if err != nil {
		return fmt.Errorf("failed to scan generated package %s: %w", dir, err)
	}
	if packageInfo == nil || len(packageInfo.Files) == 0 {
		return fmt.Errorf("no Go files found in %s", dir)
	}

	return checkDeclarations(dir, packageInfo, index)
}

// checkDeclarations reports the index declarations missing from a scanned package
func checkDeclarations(dir string, packageInfo *gophon.PackageInfo, index *ServiceIndex) error {
	declared := declaredNames(packageInfo)

	var missing []string
	if !declared["Index"] {
		missing = append(missing, "Index")
	}
	for _, entry := range index.IndexEntries() {
		for _, name := range []string{entry.Name, "New" + entry.Name} {
			if !declared[name] {
				missing = append(missing, name)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("generated package %s is missing declarations: %s", dir, strings.Join(missing, ", "))
	}
	return nil
}

// declaredNames collects the top-level types, functions and variables of a package
func declaredNames(packageInfo *gophon.PackageInfo) map[string]bool {
	declared := make(map[string]bool)
	for _, fileInfo := range packageInfo.Files {
		if fileInfo.File == nil {
			continue
		}
		for _, decl := range fileInfo.File.Decls {
			switch d := decl.(type) {
			case *ast.FuncDecl:
				if d.Recv == nil {
					declared[d.Name.Name] = true
				}
			case *ast.GenDecl:
				for _, spec := range d.Specs {
					switch s := spec.(type) {
					case *ast.TypeSpec:
						declared[s.Name.Name] = true
					case *ast.ValueSpec:
						for _, name := range s.Names {
							declared[name.Name] = true
						}
					}
				}
			}
		}
	}
	return declared
}

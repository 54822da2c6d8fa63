package main

import (
	"github.com/mewkiz/pkg/jsonutil"
	"github.com/mewkiz/pkg/osutil"
	"github.com/pkg/errors"
)

// hintsConfig narrows which functions are analyzed and is otherwise
// optional; its absence analyzes every non-::main function whose
// demangled name contains the module's file stem.
type hintsConfig struct {
	// Allow is a set of substrings; a function is analyzed only if its
	// demangled name contains at least one of them. Empty means no
	// narrowing.
	Allow []string `json:"allow"`
}

// loadHints parses the given JSON file, treating a missing file as "no
// hints" rather than an error.
func loadHints(path string) (*hintsConfig, error) {
	if path == "" {
		return nil, nil
	}
	if !osutil.Exists(path) {
		warn.Printf("unable to locate hints file %q", path)
		return nil, nil
	}
	dbg.Printf("loadHints(path = %q)", path)
	var cfg hintsConfig
	if err := jsonutil.ParseFile(path, &cfg); err != nil {
		return nil, errors.WithStack(err)
	}
	return &cfg, nil
}

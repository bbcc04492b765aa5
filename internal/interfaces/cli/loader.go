package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/samber/lo"

	"github.com/turtacn/SymRxn/internal/domain/molecule"
	"github.com/turtacn/SymRxn/internal/domain/reaction"
	"github.com/turtacn/SymRxn/internal/infrastructure/chem"
	"github.com/turtacn/SymRxn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/SymRxn/pkg/errors"
)

// FileError is an input file that could not be loaded.
type FileError struct {
	Path string `json:"path"`
	Code string `json:"code"`
	Err  string `json:"error"`
}

// loadMolecules parses every path. Unreadable files are collected and the
// rest of the batch continues.
func loadMolecules(oracle *chem.Oracle, paths []string, log logging.Logger) ([]*molecule.Graph, []FileError) {
	var (
		mols []*molecule.Graph
		bad  []FileError
	)
	for _, p := range paths {
		g, err := oracle.ParseFile(p)
		if err != nil {
			log.Warn("cannot read molecule file", logging.String("path", p), logging.Err(err))
			bad = append(bad, FileError{Path: p, Code: string(errors.GetCode(err)), Err: err.Error()})
			continue
		}
		mols = append(mols, g)
	}
	return mols, bad
}

// reportBadFiles writes the consolidated list of unreadable files to stderr.
func reportBadFiles(w io.Writer, bad []FileError) {
	if len(bad) == 0 {
		return
	}
	fmt.Fprintf(w, "Cannot read %d file(s):\n", len(bad))
	for _, b := range bad {
		fmt.Fprintf(w, "  %s: %s\n", b.Path, b.Err)
	}
}

// loadPatterns expands each --reaction value. A value naming an existing
// file contributes one pattern per non-empty line; '#' starts a comment.
func loadPatterns(values []string) ([]string, error) {
	var patterns []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		info, err := os.Stat(v)
		if err != nil || info.IsDir() {
			patterns = append(patterns, v)
			continue
		}
		f, err := os.Open(v)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeFileUnreadable, "cannot read reaction file").WithDetail("path=" + v)
		}
		sc := bufio.NewScanner(f)
		for sc.Scan() {
			line := sc.Text()
			if i := strings.IndexByte(line, '#'); i >= 0 {
				line = line[:i]
			}
			if fields := strings.Fields(line); len(fields) > 0 {
				patterns = append(patterns, fields[0])
			}
		}
		err = sc.Err()
		f.Close()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeFileUnreadable, "cannot read reaction file").WithDetail("path=" + v)
		}
	}
	return lo.Uniq(patterns), nil
}

// PatternFailure is a reaction pattern that did not compile.
type PatternFailure struct {
	Pattern string `json:"pattern"`
	Code    string `json:"code"`
	Err     string `json:"error"`

	cause error
}

// buildTemplates compiles every pattern. Invalid patterns are collected and
// the rest still compile, in input order.
func buildTemplates(engine reaction.Engine, patterns []string, log logging.Logger) ([]*reaction.Template, []PatternFailure) {
	var (
		templates []*reaction.Template
		failed    []PatternFailure
	)
	for _, p := range patterns {
		t, err := reaction.NewTemplate(engine, p)
		if err != nil {
			log.Warn("cannot compile reaction", logging.String(logging.FieldPattern, p), logging.Err(err))
			failed = append(failed, PatternFailure{Pattern: p, Code: string(errors.GetCode(err)), Err: err.Error(), cause: err})
			continue
		}
		log.Debug("reaction compiled", logging.String(logging.FieldPattern, p), logging.String(logging.FieldTemplate, t.ID()))
		templates = append(templates, t)
	}
	return templates, failed
}

// reportBadPatterns writes the consolidated list of invalid patterns.
func reportBadPatterns(w io.Writer, failed []PatternFailure) {
	if len(failed) == 0 {
		return
	}
	fmt.Fprintf(w, "Cannot compile %d reaction(s):\n", len(failed))
	for _, f := range failed {
		fmt.Fprintf(w, "  %s: %s\n", f.Pattern, f.Err)
	}
}

//Personal.AI order the ending

// Package manifest derives a platform-appropriate pip requirements file
// from a generic one.
package manifest

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/rvctools/vcinstall/internal/errors"
	"github.com/rvctools/vcinstall/pkg/fileutil"
)

// Result reports what a sanitation pass did.
type Result struct {
	// Kept is the number of requirement lines written to the output.
	Kept int

	// Dropped lists the requirement lines removed, in input order.
	Dropped []string
}

// Sanitize reads the requirements file at src, drops every requirement
// whose package name matches the rule set, and atomically writes the
// filtered manifest to dst.
func Sanitize(src, dst string, rules RuleSet) (*Result, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", src)
	}
	defer f.Close()

	var out strings.Builder
	res, err := filter(f, &out, rules)
	if err != nil {
		return nil, err
	}

	if err := fileutil.AtomicWriteFile(dst, []byte(out.String()), 0o644); err != nil {
		return nil, errors.Wrapf(err, "writing %s", dst)
	}
	return res, nil
}

// filter copies requirement lines from r to w, dropping matches.
// Comments and blank lines pass through untouched.
func filter(r io.Reader, w io.Writer, rules RuleSet) (*Result, error) {
	res := &Result{}
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := scanner.Text()
		name := PackageName(line)

		if name != "" && rules.Matches(name) {
			res.Dropped = append(res.Dropped, strings.TrimSpace(line))
			continue
		}

		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return nil, errors.Wrap(err, "writing filtered manifest")
		}
		if name != "" {
			res.Kept++
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading manifest")
	}
	return res, nil
}

// PackageName extracts the package name from a pip requirement line.
// It returns "" for blank lines, comments, and pip option lines.
//
// The name is everything before the first version specifier, extras
// bracket, environment marker, or whitespace: "torch==2.2.2" yields
// "torch", "uvicorn[standard]>=0.20" yields "uvicorn".
func PackageName(line string) string {
	s := strings.TrimSpace(line)
	if s == "" || strings.HasPrefix(s, "#") || strings.HasPrefix(s, "-") {
		return ""
	}

	end := len(s)
	for i, r := range s {
		if strings.ContainsRune("=<>!~[; \t", r) {
			end = i
			break
		}
	}
	return s[:end]
}

// normalize lowercases a package name and folds underscores to hyphens,
// matching pip's name normalization.
func normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "-")
}

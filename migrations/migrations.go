// Package migrations embeds the sandbox database schema.
package migrations

import (
	"embed"
	"io/fs"
	"sort"
)

//go:embed *.up.sql
var files embed.FS

// Up returns the contents of every up migration in filename order.
func Up() ([]string, error) {
	names, err := fs.Glob(files, "*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := make([]string, 0, len(names))
	for _, name := range names {
		b, err := files.ReadFile(name)
		if err != nil {
			return nil, err
		}
		out = append(out, string(b))
	}
	return out, nil
}

package app

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/gridstorm/internal/table"
)

// LoadTable reads the table with the given id from the HTML file at
// path. An empty id selects the first table of the file.
func LoadTable(path, id string) (*table.Table, error) {
	if path == "" {
		return nil, ErrNoTable
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Op: "load", Path: path, Err: err}
	}
	defer f.Close()

	t, err := table.ParseHTML(f, id)
	if err != nil {
		return nil, &FileError{Op: "load", Path: path, Err: err}
	}
	return t, nil
}

func tableHTML(t *table.Table) (string, error) {
	var b strings.Builder
	if err := t.WriteHTML(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Save writes the table back to its file. The document is written to a
// temporary file first and renamed into place.
func (a *Application) Save() error {
	path := a.cfg.Table.Path
	if path == "" {
		return ErrNoFilePath
	}
	html, err := tableHTML(a.grid.Table())
	if err != nil {
		return &FileError{Op: "save", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".gridstorm-*")
	if err != nil {
		return &FileError{Op: "save", Path: path, Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(html); err != nil {
		tmp.Close()
		return &FileError{Op: "save", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &FileError{Op: "save", Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &FileError{Op: "save", Path: path, Err: err}
	}

	a.saved = html
	a.log.WithField("path", path).Info("table saved")
	return nil
}

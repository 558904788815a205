package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const migrationTemplate = `-- {{.Name}} ({{.Direction}})
-- Created: {{.Timestamp}}

`

// MigrationFile is a pair of up/down files sharing a version
type MigrationFile struct {
	Version  uint
	Name     string
	UpPath   string
	DownPath string
}

// CreateMigration writes an empty NNNNNN_name.{up,down}.sql pair numbered after
// the highest existing version in dir
func CreateMigration(dir, name string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create migrations directory: %w", err)
	}

	existing, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}
	var next uint = 1
	if len(existing) > 0 {
		next = existing[len(existing)-1].Version + 1
	}

	base := fmt.Sprintf("%06d_%s", next, slug)
	mf := &MigrationFile{
		Version:  next,
		Name:     slug,
		UpPath:   filepath.Join(dir, base+".up.sql"),
		DownPath: filepath.Join(dir, base+".down.sql"),
	}

	if err := writeMigrationFile(mf.UpPath, slug, "up"); err != nil {
		return nil, err
	}
	if err := writeMigrationFile(mf.DownPath, slug, "down"); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func writeMigrationFile(path, name, direction string) error {
	tmpl := template.Must(template.New("migration").Parse(migrationTemplate))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	return tmpl.Execute(f, map[string]string{
		"Name":      name,
		"Direction": direction,
		"Timestamp": time.Now().Format(time.RFC3339),
	})
}

// sanitizeName lowercases name and collapses separators into single underscores
func sanitizeName(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, c := range strings.ToLower(name) {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(c)
		case c == ' ' || c == '-' || c == '_':
			pendingSep = true
		}
	}
	return b.String()
}

// ListMigrations returns the migrations in dir ordered by version.
// A missing directory yields an empty list.
func ListMigrations(dir string) ([]MigrationFile, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []MigrationFile
	for _, entry := range entries {
		base, ok := strings.CutSuffix(entry.Name(), ".up.sql")
		if entry.IsDir() || !ok {
			continue
		}
		versionPart, name, ok := strings.Cut(base, "_")
		if !ok {
			continue
		}
		version, err := strconv.ParseUint(versionPart, 10, 64)
		if err != nil {
			continue
		}
		files = append(files, MigrationFile{
			Version:  uint(version),
			Name:     name,
			UpPath:   filepath.Join(dir, entry.Name()),
			DownPath: filepath.Join(dir, base+".down.sql"),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Version < files[j].Version })
	return files, nil
}

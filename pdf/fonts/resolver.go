package fonts

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

// DefaultPreferred lists the names tried in order before any substring match.
var DefaultPreferred = []string{"HudsonNY", "Hudson NY", "HudsonNY-Regular"}

// DefaultContains is the substring fallback used when no exact match exists.
const DefaultContains = "hudson"

// DefaultFontDirs returns the usual system font directories for the
// current platform.
func DefaultFontDirs() []string {
	home, _ := os.UserHomeDir()
	switch runtime.GOOS {
	case "darwin":
		dirs := []string{"/System/Library/Fonts", "/Library/Fonts"}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, "Library", "Fonts"))
		}
		return dirs
	case "windows":
		windir := os.Getenv("WINDIR")
		if windir == "" {
			windir = `C:\Windows`
		}
		return []string{filepath.Join(windir, "Fonts")}
	default:
		dirs := []string{"/usr/share/fonts", "/usr/local/share/fonts"}
		if home != "" {
			dirs = append(dirs, filepath.Join(home, ".fonts"), filepath.Join(home, ".local", "share", "fonts"))
		}
		return dirs
	}
}

// Resolver finds the sheet font on disk and falls back to standard
// Helvetica when it cannot.
type Resolver struct {
	Dirs      []string
	Preferred []string
	Contains  string
	Logger    *slog.Logger

	once sync.Once
	font Font
}

// NewResolver creates a resolver over the default font directories.
func NewResolver(logger *slog.Logger) *Resolver {
	return &Resolver{
		Dirs:      DefaultFontDirs(),
		Preferred: append([]string(nil), DefaultPreferred...),
		Contains:  DefaultContains,
		Logger:    logger,
	}
}

type candidate struct {
	path string
	font *TrueTypeFont
}

// Find looks for a font whose file name, PostScript name, or family name
// equals one of Preferred, in order, then for one whose name contains
// Contains.
func (r *Resolver) Find() (*TrueTypeFont, error) {
	var all []candidate
	for _, dir := range r.Dirs {
		filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if d != nil && d.IsDir() {
					return fs.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				return nil
			}
			switch strings.ToLower(filepath.Ext(path)) {
			case ".ttf", ".otf":
			default:
				return nil
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return nil
			}
			f, err := LoadTrueTypeFont(data)
			if err != nil {
				return nil
			}
			all = append(all, candidate{path: path, font: f})
			return nil
		})
	}

	for _, want := range r.Preferred {
		for _, c := range all {
			if matchesExactly(c, want) {
				return c.font, nil
			}
		}
	}
	if r.Contains != "" {
		needle := strings.ToLower(r.Contains)
		for _, c := range all {
			for _, name := range names(c) {
				if strings.Contains(strings.ToLower(name), needle) {
					return c.font, nil
				}
			}
		}
	}
	return nil, ErrFontUnavailable
}

func names(c candidate) []string {
	stem := strings.TrimSuffix(filepath.Base(c.path), filepath.Ext(c.path))
	return []string{stem, c.font.Name(), c.font.Family()}
}

func matchesExactly(c candidate, want string) bool {
	for _, name := range names(c) {
		if name != "" && strings.EqualFold(name, want) {
			return true
		}
	}
	return false
}

// Resolve returns the sheet font. The directory search runs once; a miss
// is logged once and yields standard Helvetica.
func (r *Resolver) Resolve() Font {
	r.once.Do(func() {
		f, err := r.Find()
		if err != nil {
			r.logger().Warn("sheet font not found, using standard Helvetica",
				"preferred", r.Preferred, "dirs", r.Dirs)
			r.font = NewStandardFont(Helvetica)
			return
		}
		r.logger().Debug("resolved sheet font", "name", f.Name())
		r.font = f
	})
	return r.font
}

func (r *Resolver) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}

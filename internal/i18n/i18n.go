package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Lang is the only locale the site ships.
const Lang = "pt-BR"

//go:embed locales/*.json
var embedded embed.FS

// Bundle holds the UI copy for one locale.
type Bundle struct {
	lang    string
	dict    map[string]string
	printer *message.Printer
}

// Load reads locales/<lang>.json from fsys.
func Load(fsys fs.FS, lang string) (*Bundle, error) {
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("i18n: parse lang %s: %w", lang, err)
	}
	raw, err := fs.ReadFile(fsys, path.Join("locales", lang+".json"))
	if err != nil {
		return nil, fmt.Errorf("i18n: load locale %s: %w", lang, err)
	}
	var m map[string]string
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("i18n: unmarshal %s: %w", lang, err)
	}
	return &Bundle{lang: lang, dict: m, printer: message.NewPrinter(tag)}, nil
}

var defaultBundle = mustLoad(embedded, Lang)

// Default returns the embedded pt-BR bundle.
func Default() *Bundle { return defaultBundle }

// Lang returns the bundle's locale.
func (b *Bundle) Lang() string { return b.lang }

// T returns the translation for key, formatted with args using locale-aware
// number printing. Unknown keys return the key itself.
func (b *Bundle) T(key string, args ...any) string {
	v, ok := b.dict[key]
	if !ok {
		return key
	}
	if len(args) == 0 {
		return v
	}
	return b.printer.Sprintf(v, args...)
}

func mustLoad(fsys fs.FS, lang string) *Bundle {
	b, err := Load(fsys, lang)
	if err != nil {
		panic(err)
	}
	return b
}

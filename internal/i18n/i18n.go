// Package i18n resolves dotted translation keys against the embedded locale
// bundles. Slovak is the only shipped language and the fallback for any
// other tag.
package i18n

import (
	"embed"
	"io/fs"
	"log"
	"sync"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var localeFS embed.FS

const DefaultLang = "sk"

var (
	mu        sync.RWMutex
	localizer *i18n.Localizer
)

// Init loads every embedded locale file and selects lang.
func Init(lang string) {
	bundle := i18n.NewBundle(language.Slovak)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)

	files, _ := fs.ReadDir(localeFS, "locales")
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + f.Name())
		if err != nil {
			log.Printf("i18n: read %s: %v", f.Name(), err)
			continue
		}
		if _, err := bundle.ParseMessageFileBytes(data, f.Name()); err != nil {
			log.Printf("i18n: parse %s: %v", f.Name(), err)
		}
	}

	mu.Lock()
	localizer = i18n.NewLocalizer(bundle, lang, DefaultLang)
	mu.Unlock()
}

// T translates key, filling {{.name}} placeholders from params. A missing
// key, or one naming a group of messages, logs a warning and returns the key.
func T(key string, params ...map[string]any) string {
	mu.RLock()
	l := localizer
	mu.RUnlock()
	if l == nil {
		Init(DefaultLang)
		mu.RLock()
		l = localizer
		mu.RUnlock()
	}

	cfg := &i18n.LocalizeConfig{MessageID: key}
	if len(params) > 0 {
		cfg.TemplateData = params[0]
	}
	msg, err := l.Localize(cfg)
	if err != nil {
		log.Printf("i18n: translation key not found: %s", key)
		return key
	}
	return msg
}

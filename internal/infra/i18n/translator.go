package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"

	"gopkg.in/yaml.v3"
)

//go:embed locales
var LocalesFS embed.FS

// Translator resolves user-facing phrases and the assistant persona for one locale.
type Translator struct {
	translations map[string]string
	personaText  string
}

// NewTranslator loads locales/<lang>.yaml and locales/persona-<lang>.txt from fsys.
func NewTranslator(fsys fs.FS, langCode string) (*Translator, error) {
	filePath := path.Join("locales", fmt.Sprintf("%s.yaml", langCode))
	data, err := fs.ReadFile(fsys, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read translation file %s: %w", filePath, err)
	}
	t, err := newTranslatorFromBytes(data)
	if err != nil {
		return nil, err
	}

	personaPath := path.Join("locales", fmt.Sprintf("persona-%s.txt", langCode))
	personaBytes, err := fs.ReadFile(fsys, personaPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read persona file %s: %w", personaPath, err)
	}
	t.personaText = string(personaBytes)
	return t, nil
}

func newTranslatorFromBytes(data []byte) (*Translator, error) {
	var translations map[string]string
	if err := yaml.Unmarshal(data, &translations); err != nil {
		return nil, fmt.Errorf("failed to parse translation file: %w", err)
	}
	return &Translator{translations: translations}, nil
}

// T returns the phrase for key formatted with args, or key itself when unknown.
func (t *Translator) T(key string, args ...interface{}) string {
	format, ok := t.translations[key]
	if !ok {
		return key
	}
	if len(args) > 0 {
		return fmt.Sprintf(format, args...)
	}
	return format
}

// Persona is the default system prompt shipped with the locale.
func (t *Translator) Persona() string {
	return t.personaText
}

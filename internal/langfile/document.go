// Package langfile reads and writes language documents.
//
// A language document is a YAML or TOML file holding the phoneme categories,
// rewrite pairs, romanization, sound change rules and lexicon of one
// constructed language:
//
//	name: Proto-Example
//	categories:
//	  - abbrev: V
//	    name: Vowel
//	    phonemes: aeiou
//	  - abbrev: C
//	    phonemes: p tʃ t k
//	rewrites:
//	  - from: tʃ
//	    to: ch
//	romanization:
//	  tʃ: ch
//	rules:
//	  - t→d/V_V
//	lexicon:
//	  - tata
package langfile

import (
	"bytes"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	clerrors "github.com/relicta-tech/conlang/internal/errors"
	"github.com/relicta-tech/conlang/internal/fileutil"
	"github.com/relicta-tech/conlang/internal/inventory"
)

// Format is a document encoding.
type Format string

const (
	// FormatYAML is used for .yaml and .yml files.
	FormatYAML Format = "yaml"
	// FormatTOML is used for .toml files.
	FormatTOML Format = "toml"
)

// ParseFormat resolves a format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	default:
		return "", clerrors.Validationf("langfile.ParseFormat", "unsupported format %q (use yaml or toml)", name)
	}
}

// DetectFormat picks the format from a file extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", clerrors.Validationf("langfile.DetectFormat", "cannot infer format of %q", path)
	}
	return ParseFormat(ext)
}

// Category is one phoneme class. Phonemes is raw text segmented on import;
// Members lists phonemes explicitly in "symbol" or "symbol [grapheme]" form.
type Category struct {
	Abbrev   string   `yaml:"abbrev" toml:"abbrev" json:"abbrev"`
	Name     string   `yaml:"name,omitempty" toml:"name,omitempty" json:"name,omitempty"`
	Phonemes string   `yaml:"phonemes,omitempty" toml:"phonemes,omitempty" json:"phonemes,omitempty"`
	Members  []string `yaml:"members,omitempty" toml:"members,omitempty" json:"members,omitempty"`
}

// Document is the on-disk form of a language.
type Document struct {
	Name       string     `yaml:"name" toml:"name" json:"name"`
	Categories []Category `yaml:"categories,omitempty" toml:"categories,omitempty" json:"categories,omitempty"`
	// Phonemes lists phonemes that belong to no category.
	Phonemes     []string            `yaml:"phonemes,omitempty" toml:"phonemes,omitempty" json:"phonemes,omitempty"`
	Rewrites     []inventory.Rewrite `yaml:"rewrites,omitempty" toml:"rewrites,omitempty" json:"rewrites,omitempty"`
	Romanization map[string]string   `yaml:"romanization,omitempty" toml:"romanization,omitempty" json:"romanization,omitempty"`
	Rules        []string            `yaml:"rules,omitempty" toml:"rules,omitempty" json:"rules,omitempty"`
	Lexicon      []string            `yaml:"lexicon,omitempty" toml:"lexicon,omitempty" json:"lexicon,omitempty"`
}

// Decode parses a document.
func Decode(data []byte, format Format) (*Document, error) {
	const op = "langfile.Decode"

	var doc Document
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, clerrors.ParseWrap(err, op, "failed to parse YAML document")
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, clerrors.ParseWrap(err, op, "failed to parse TOML document")
		}
	default:
		return nil, clerrors.Validationf(op, "unsupported format %q", format)
	}
	return &doc, nil
}

// Encode serializes a document.
func Encode(doc *Document, format Format) ([]byte, error) {
	const op = "langfile.Encode"

	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, clerrors.Wrap(err, clerrors.KindInternal, op, "failed to encode YAML")
		}
		if err := enc.Close(); err != nil {
			return nil, clerrors.Wrap(err, clerrors.KindInternal, op, "failed to encode YAML")
		}
		return buf.Bytes(), nil
	case FormatTOML:
		data, err := toml.Marshal(doc)
		if err != nil {
			return nil, clerrors.Wrap(err, clerrors.KindInternal, op, "failed to encode TOML")
		}
		return data, nil
	default:
		return nil, clerrors.Validationf(op, "unsupported format %q", format)
	}
}

// Load reads a document, choosing the format from the extension.
func Load(path string) (*Document, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := fileutil.ReadDocument(path)
	if err != nil {
		return nil, clerrors.IOWrap(err, "langfile.Load", "failed to read language document")
	}
	return Decode(data, format)
}

// Save writes a document, choosing the format from the extension.
func Save(path string, doc *Document) error {
	format, err := DetectFormat(path)
	if err != nil {
		return err
	}
	data, err := Encode(doc, format)
	if err != nil {
		return err
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return clerrors.IOWrap(err, "langfile.Save", "failed to write language document")
	}
	return nil
}

// Normalize rewrites every string of the document in Unicode NFC so that
// precomposed and decomposed spellings of a symbol compare equal.
func (d *Document) Normalize() {
	nfc := norm.NFC.String

	d.Name = nfc(d.Name)
	for i := range d.Categories {
		c := &d.Categories[i]
		c.Abbrev = nfc(c.Abbrev)
		c.Name = nfc(c.Name)
		c.Phonemes = nfc(c.Phonemes)
		normalizeAll(c.Members)
	}
	normalizeAll(d.Phonemes)
	for i := range d.Rewrites {
		d.Rewrites[i].From = nfc(d.Rewrites[i].From)
		d.Rewrites[i].To = nfc(d.Rewrites[i].To)
	}
	if d.Romanization != nil {
		rom := make(map[string]string, len(d.Romanization))
		for k, v := range d.Romanization {
			rom[nfc(k)] = nfc(v)
		}
		d.Romanization = rom
	}
	normalizeAll(d.Rules)
	normalizeAll(d.Lexicon)
}

func normalizeAll(ss []string) {
	for i, s := range ss {
		ss[i] = norm.NFC.String(s)
	}
}

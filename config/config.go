// Package config loads tokenizer configurations from TOML or YAML files.
//
// A configuration lists channels in the order the lexer tries them:
//
//	charset = "ISO-8859-1"
//	pattern_timeout = "250ms"
//
//	[[channels]]
//	kind = "blackhole"
//	regexp = '\s+'
//
//	[[channels]]
//	kind = "identifier"
//	regexp = '[a-zA-Z_]\w*'
//	keywords = ["if", "while"]
//
//	[[channels]]
//	kind = "punctuator"
//	punctuators = { LPAREN = "(", RPAREN = ")" }
package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/grit/lexer"
	"github.com/dhamidi/grit/token"
)

type Format string

const (
	TOML Format = "toml"
	YAML Format = "yaml"
)

// FormatOf returns the format implied by the extension of path.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return TOML, nil
	case ".yaml", ".yml":
		return YAML, nil
	}
	return "", fmt.Errorf("config: unknown format of %s", path)
}

// Duration wraps time.Duration for text decoding.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config describes a lexer.
type Config struct {
	Charset string `toml:"charset" yaml:"charset"`
	// FailOnUnknown defaults to true: a character no channel consumes is a
	// lexical fault instead of skipped text.
	FailOnUnknown  *bool     `toml:"fail_on_unknown" yaml:"fail_on_unknown"`
	PatternTimeout Duration  `toml:"pattern_timeout" yaml:"pattern_timeout"`
	Channels       []Channel `toml:"channels" yaml:"channels"`
}

// Channel describes one channel. Kind selects the channel and which of the
// other fields apply:
//
//	blackhole   regexp
//	comment     regexp
//	trivia      regexp, type, trivia (comment, skipped or preprocessor)
//	regexp      regexp, type, skip
//	identifier  regexp, keywords, case_sensitive
//	punctuator  punctuators, skip
//	unknown     nothing; must be last
type Channel struct {
	Kind          string            `toml:"kind" yaml:"kind"`
	Regexp        string            `toml:"regexp" yaml:"regexp"`
	Type          string            `toml:"type" yaml:"type"`
	Trivia        string            `toml:"trivia" yaml:"trivia"`
	Skip          bool              `toml:"skip" yaml:"skip"`
	CaseSensitive *bool             `toml:"case_sensitive" yaml:"case_sensitive"`
	Keywords      []string          `toml:"keywords" yaml:"keywords"`
	Punctuators   map[string]string `toml:"punctuators" yaml:"punctuators"`
}

// Load reads the configuration at path, in the format implied by its
// extension.
func Load(path string) (*Config, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte, format Format) (*Config, error) {
	var cfg Config
	switch format {
	case TOML:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("decode config: unknown key %s", undecoded[0])
		}
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	default:
		return nil, fmt.Errorf("decode config: unknown format %q", format)
	}
	return &cfg, nil
}

// Types maps the names of the token types a configuration declares to
// the types themselves, so that grammars can refer to them.
type Types map[string]token.Type

// Lookup returns the declared or generic type called name.
func (t Types) Lookup(name string) (token.Type, bool) {
	if typ, ok := t[name]; ok {
		return typ, true
	}
	if g, ok := generic(name); ok {
		return g, true
	}
	return nil, false
}

func generic(name string) (token.Generic, bool) {
	for g := token.EOF; g <= token.Undefined; g++ {
		if g.Name() == name {
			return g, true
		}
	}
	return 0, false
}

// Build creates the lexer. Options are applied after the configured ones.
func (c *Config) Build(opts ...lexer.Option) (*lexer.Lexer, Types, error) {
	types := make(Types)
	channels := make([]lexer.Channel, 0, len(c.Channels))
	for i, ch := range c.Channels {
		channel, err := ch.build(types)
		if err != nil {
			return nil, nil, fmt.Errorf("config: channel %d (%s): %w", i, ch.Kind, err)
		}
		channels = append(channels, channel)
	}

	base := []lexer.Option{lexer.WithChannels(channels...), lexer.WithCharset(c.Charset)}
	if c.FailOnUnknown != nil {
		base = append(base, lexer.WithFailIfNoChannel(*c.FailOnUnknown))
	}
	if c.PatternTimeout.Duration > 0 {
		base = append(base, lexer.WithPatternTimeout(c.PatternTimeout.Duration))
	}
	lx, err := lexer.New(append(base, opts...)...)
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	return lx, types, nil
}

func (ch Channel) build(types Types) (lexer.Channel, error) {
	switch ch.Kind {
	case "blackhole":
		if err := requireField("regexp", ch.Regexp); err != nil {
			return nil, err
		}
		return lexer.BlackHole(ch.Regexp), nil

	case "comment":
		if err := requireField("regexp", ch.Regexp); err != nil {
			return nil, err
		}
		return lexer.CommentRegexp(ch.Regexp), nil

	case "trivia":
		if err := requireField("regexp", ch.Regexp); err != nil {
			return nil, err
		}
		kind, err := triviaKind(ch.Trivia)
		if err != nil {
			return nil, err
		}
		typ := token.Type(token.Undefined)
		if ch.Type != "" {
			typ = types.declare(ch.Type, ch.Type, false)
		}
		return lexer.TriviaRegexp(kind, typ, ch.Regexp), nil

	case "regexp":
		if err := requireField("regexp", ch.Regexp); err != nil {
			return nil, err
		}
		if err := requireField("type", ch.Type); err != nil {
			return nil, err
		}
		return lexer.Regexp(types.declare(ch.Type, ch.Type, ch.Skip), ch.Regexp), nil

	case "identifier":
		if err := requireField("regexp", ch.Regexp); err != nil {
			return nil, err
		}
		upper := cases.Upper(language.Und)
		keywords := make([]token.Type, len(ch.Keywords))
		for i, kw := range ch.Keywords {
			keywords[i] = types.declare(upper.String(kw), kw, false)
		}
		caseSensitive := ch.CaseSensitive == nil || *ch.CaseSensitive
		return lexer.IdentifierAndKeyword(ch.Regexp, caseSensitive, keywords...), nil

	case "punctuator":
		if len(ch.Punctuators) == 0 {
			return nil, fmt.Errorf("missing punctuators")
		}
		names := make([]string, 0, len(ch.Punctuators))
		for name := range ch.Punctuators {
			names = append(names, name)
		}
		sort.Strings(names)
		puncts := make([]token.Type, len(names))
		for i, name := range names {
			puncts[i] = types.declare(name, ch.Punctuators[name], ch.Skip)
		}
		return lexer.Punctuator(puncts...), nil

	case "unknown":
		return lexer.UnknownCharacter(), nil
	}
	return nil, fmt.Errorf("unknown channel kind %q", ch.Kind)
}

func requireField(field, value string) error {
	if value == "" {
		return fmt.Errorf("missing %s", field)
	}
	return nil
}

// declare returns the generic type called name, or a new kind. Later
// declarations of a name replace earlier ones in the map.
func (t Types) declare(name, value string, skip bool) token.Type {
	if g, ok := generic(name); ok {
		return g
	}
	var k token.Kind
	if skip {
		k = token.NewSkippedKind(name, value)
	} else {
		k = token.NewKind(name, value)
	}
	t[name] = k
	return k
}

func triviaKind(name string) (token.TriviaKind, error) {
	switch name {
	case "", "skipped":
		return token.TriviaSkippedText, nil
	case "comment":
		return token.TriviaComment, nil
	case "preprocessor":
		return token.TriviaPreprocessor, nil
	}
	return 0, fmt.Errorf("unknown trivia kind %q", name)
}

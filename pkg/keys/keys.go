// Package keys describes key bindings and translates key codes into the byte
// sequences a terminal in raw mode delivers for them.
package keys

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var ErrUnknownKey = errors.New("unknown key")

// Key represents a keyboard key with optional alias and visibility settings.
type Key struct {
	// Code is the key code identifier, e.g. "q", "ctrl+c" or "esc".
	Code string `json:"code" jsonschema:"title=Code"`
	// Alias is an alternative display name for the key.
	Alias string `json:"alias,omitempty" jsonschema:"title=Alias"`
	// Hidden determines if the key should be hidden from display.
	Hidden bool `json:"hidden,omitempty" jsonschema:"title=Hidden"`
}

type KeyOpt func(k *Key)

func New(code string, opts ...KeyOpt) Key {
	k := &Key{
		Code: code,
	}
	for _, opt := range opts {
		opt(k)
	}

	return *k
}

func WithAlias(alias string) KeyOpt {
	return func(k *Key) {
		k.Alias = alias
	}
}

func Hidden() KeyOpt {
	return func(k *Key) {
		k.Hidden = true
	}
}

func (k Key) String() string {
	if k.Alias != "" {
		return k.Alias
	}

	return k.Code
}

var named = map[string][]byte{
	"esc":       {0x1b},
	"enter":     {'\r'},
	"tab":       {'\t'},
	"space":     {' '},
	"backspace": {0x7f},
}

// Bytes returns the input a terminal in raw mode produces for the key.
func (k Key) Bytes() ([]byte, error) {
	code := strings.ToLower(strings.TrimSpace(k.Code))

	if b, ok := named[code]; ok {
		return b, nil
	}

	if letter, ok := strings.CutPrefix(code, "ctrl+"); ok {
		if len(letter) == 1 && letter[0] >= 'a' && letter[0] <= 'z' {
			return []byte{letter[0] - 'a' + 1}, nil
		}

		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, k.Code)
	}

	// Printable keys are matched as typed, so keep the original case.
	if utf8.RuneCountInString(k.Code) == 1 {
		return []byte(k.Code), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownKey, k.Code)
}

// KeyBind represents a key binding with its description and associated keys.
type KeyBind struct {
	// Description provides a description of what the key binding does.
	Description string `json:"description" jsonschema:"title=Description"`
	// Keys contains the list of keys that trigger this binding.
	Keys []Key `json:"keys" jsonschema:"title=Keys"`
}

func NewBind(description string, keys ...Key) KeyBind {
	return KeyBind{
		Description: description,
		Keys:        keys,
	}
}

func (kb *KeyBind) String() string {
	keys := []string{}
	for _, k := range kb.Keys {
		if k.Hidden {
			continue
		}

		keys = append(keys, k.String())
	}

	return strings.Join(keys, "/")
}

// Match checks if the key matches any of the keys in the binding.
func (kb *KeyBind) Match(key string) bool {
	for _, k := range kb.Keys {
		if k.Code == key {
			return true
		}
	}

	return false
}

func (kb *KeyBind) AddKey(key Key) {
	if kb == nil {
		return
	}

	for _, k := range kb.Keys {
		if k.Code == key.Code {
			return // Key already exists, do not add again.
		}
	}

	kb.Keys = append(kb.Keys, key)
}

// Matcher reports whether raw terminal input contains any key of a binding.
type Matcher struct {
	seqs [][]byte
}

// Matcher compiles the binding's keys. It fails on the first unknown code.
func (kb *KeyBind) Matcher() (*Matcher, error) {
	m := &Matcher{}

	for _, k := range kb.Keys {
		b, err := k.Bytes()
		if err != nil {
			return nil, err
		}

		m.seqs = append(m.seqs, b)
	}

	return m, nil
}

// Match reports whether input contains any of the compiled sequences.
func (m *Matcher) Match(input []byte) bool {
	for _, seq := range m.seqs {
		if bytes.Contains(input, seq) {
			return true
		}
	}

	return false
}

func ValidateBinds(kbs ...*KeyBind) error {
	var errs []error

	seen := make(map[string]bool)
	for _, kb := range kbs {
		if kb == nil {
			continue
		}

		for _, key := range kb.Keys {
			if seen[key.Code] {
				errs = append(errs, fmt.Errorf("duplicate key binding found: %s", key.Code))
			}

			seen[key.Code] = true

			if _, err := key.Bytes(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func SetDefaultBind(kb **KeyBind, defaultKb KeyBind) {
	if *kb == nil {
		*kb = &defaultKb

		return
	}

	if len((*kb).Keys) == 0 {
		(*kb).Keys = defaultKb.Keys
	}

	if (*kb).Description == "" {
		(*kb).Description = defaultKb.Description
	}
}

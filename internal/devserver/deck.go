package devserver

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed default_deck.yaml
var defaultDeckYAML []byte

// Deck is the fixture a dev server is seeded from.
type Deck struct {
	Users       []DeckUser       `yaml:"users"`
	Collections []DeckCollection `yaml:"collections"`
}

// DeckUser is an account that can log in.
type DeckUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Nickname string `yaml:"nickname"`
}

// DeckCollection is a seeded collection.
type DeckCollection struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Color       string     `yaml:"color"`
	Icon        string     `yaml:"icon"`
	Words       []DeckWord `yaml:"words"`
}

// DeckWord is a seeded word. Status is the initial learning status.
type DeckWord struct {
	Word         string   `yaml:"word"`
	Chinese      string   `yaml:"chinese"`
	Phonetic     string   `yaml:"phonetic"`
	PartOfSpeech string   `yaml:"part_of_speech"`
	Sentences    []string `yaml:"sentences"`
	Status       int      `yaml:"status"`
}

// DefaultDeck returns the built-in deck.
func DefaultDeck() *Deck {
	d, err := ParseDeck(defaultDeckYAML)
	if err != nil {
		panic(fmt.Sprintf("devserver: built-in deck: %v", err))
	}
	return d
}

// LoadDeck reads a deck from a YAML file.
func LoadDeck(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deck: %w", err)
	}
	d, err := ParseDeck(data)
	if err != nil {
		return nil, fmt.Errorf("deck %s: %w", path, err)
	}
	return d, nil
}

// ParseDeck decodes and validates a YAML deck.
func ParseDeck(data []byte) (*Deck, error) {
	var d Deck
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Validate checks the deck for missing or duplicated fields.
func (d *Deck) Validate() error {
	if len(d.Users) == 0 {
		return errors.New("deck has no users")
	}
	users := map[string]bool{}
	for i, u := range d.Users {
		if u.Username == "" || u.Password == "" {
			return fmt.Errorf("user %d: username and password are required", i)
		}
		if users[u.Username] {
			return fmt.Errorf("duplicate user %q", u.Username)
		}
		users[u.Username] = true
	}

	ids := map[string]bool{}
	for i, c := range d.Collections {
		if c.Name == "" {
			return fmt.Errorf("collection %d: name is required", i)
		}
		if c.ID != "" {
			if ids[c.ID] {
				return fmt.Errorf("duplicate collection id %q", c.ID)
			}
			ids[c.ID] = true
		}
		for j, w := range c.Words {
			if strings.TrimSpace(w.Word) == "" {
				return fmt.Errorf("collection %q word %d: word is required", c.Name, j)
			}
			if w.Status < statusNew || w.Status > statusCompleted {
				return fmt.Errorf("collection %q word %q: status %d out of range", c.Name, w.Word, w.Status)
			}
		}
	}
	return nil
}

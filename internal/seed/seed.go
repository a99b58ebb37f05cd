// Package seed reads the question bank and demo users from YAML.
package seed

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"quiz-ranking-service/internal/domain"
)

//go:embed default.yaml
var defaultSeed []byte

// ErrInvalidSeed marks seed entries that cannot become questions or users.
var ErrInvalidSeed = errors.New("invalid seed entry")

// namespace keeps derived ids stable across runs and machines.
var namespace = uuid.MustParse("8f0c1d52-3c55-4b58-9a3e-6f1f3f9a2b10")

type Question struct {
	ID            string `yaml:"id"`
	Text          string `yaml:"question"`
	OptionA       string `yaml:"option_a"`
	OptionB       string `yaml:"option_b"`
	OptionC       string `yaml:"option_c"`
	CorrectAnswer string `yaml:"correct_answer"`
	Active        *bool  `yaml:"active"` // defaults to true
}

type User struct {
	ID       string `yaml:"id"`
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
}

// File is the on-disk seed layout.
type File struct {
	Questions []Question `yaml:"questions"`
	Users     []User     `yaml:"users"`
}

// Load reads a seed file from path.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	return Parse(data)
}

// Default returns the bundled Star Wars question bank.
func Default() (File, error) {
	return Parse(defaultSeed)
}

func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return File{}, fmt.Errorf("parse seed: %w", err)
	}
	return f, nil
}

// LoadOrDefault reads path, or the bundled seed when path is empty.
func LoadOrDefault(path string) (File, error) {
	if path == "" {
		return Default()
	}
	return Load(path)
}

// DomainQuestions validates the questions and fills in missing ids.
// An id is derived from the question text, so reseeding does not duplicate rows.
func (f File) DomainQuestions() ([]domain.Question, error) {
	out := make([]domain.Question, 0, len(f.Questions))
	for i, q := range f.Questions {
		correct, ok := domain.ParseLetter(q.CorrectAnswer)
		if !ok {
			return nil, fmt.Errorf("question %d: %w: correct_answer %q is not A, B or C", i, ErrInvalidSeed, q.CorrectAnswer)
		}
		if strings.TrimSpace(q.Text) == "" {
			return nil, fmt.Errorf("question %d: %w: empty text", i, ErrInvalidSeed)
		}
		id, err := resolveID(q.ID, q.Text)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i, err)
		}
		active := true
		if q.Active != nil {
			active = *q.Active
		}
		out = append(out, domain.Question{
			ID:            id,
			Text:          q.Text,
			OptionA:       q.OptionA,
			OptionB:       q.OptionB,
			OptionC:       q.OptionC,
			CorrectAnswer: correct,
			Active:        active,
		})
	}
	return out, nil
}

// DomainUsers fills in missing user ids from the email.
func (f File) DomainUsers() ([]domain.User, error) {
	out := make([]domain.User, 0, len(f.Users))
	for i, u := range f.Users {
		if u.Email == "" {
			return nil, fmt.Errorf("user %d: %w: email is required", i, ErrInvalidSeed)
		}
		id, err := resolveID(u.ID, strings.ToLower(u.Email))
		if err != nil {
			return nil, fmt.Errorf("user %d: %w", i, err)
		}
		out = append(out, domain.User{ID: id, Username: u.Username, Email: u.Email})
	}
	return out, nil
}

func resolveID(raw, name string) (string, error) {
	if raw == "" {
		return uuid.NewSHA1(namespace, []byte(name)).String(), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: id %q: %v", ErrInvalidSeed, raw, err)
	}
	return id.String(), nil
}

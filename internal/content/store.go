package content

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vytor/uptriv/internal/models"
)

//go:embed bank.yaml
var defaultBank []byte

// Provider is the read side of the content bank used by the scheduler and the analytics engine.
type Provider interface {
	GetCategoryPool(category, difficulty string) []models.ContentItem
	Pools(difficulty string) map[string][]models.ContentItem
	Categories() []models.CategoryMeta
	Category(key string) (models.CategoryMeta, bool)
	Resources(category, subcategory string) []models.Resource
	Catalog() []models.Resource
}

type question struct {
	Prompt      string   `yaml:"q"`
	Answer      string   `yaml:"a"`
	Options     []string `yaml:"options"`
	Subcategory string   `yaml:"sub"`
}

type bankFile struct {
	Categories []models.CategoryMeta            `yaml:"categories"`
	Questions  map[string]map[string][]question `yaml:"questions"`
	Resources  []resourceEntry                  `yaml:"resources"`
}

type resourceEntry struct {
	Category    string `yaml:"category"`
	Subcategory string `yaml:"subcategory"`
	Title       string `yaml:"title"`
	URL         string `yaml:"url"`
	Kind        string `yaml:"kind"`
}

// Store is an immutable, validated content bank.
type Store struct {
	categories []models.CategoryMeta
	meta       map[string]models.CategoryMeta
	pools      map[string][]models.ContentItem // key: difficulty|category
	resources  []models.Resource
}

// Load parses and validates a YAML content bank.
func Load(r io.Reader) (*Store, error) {
	var bf bankFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&bf); err != nil {
		return nil, fmt.Errorf("decode content bank: %w", err)
	}
	return build(bf)
}

// LoadFile loads a content bank from path.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open content bank: %w", err)
	}
	defer f.Close()
	return Load(f)
}

var (
	defaultOnce  sync.Once
	defaultStore *Store
	defaultErr   error
)

// Default returns the bank embedded in the binary.
func Default() (*Store, error) {
	defaultOnce.Do(func() {
		defaultStore, defaultErr = Load(bytes.NewReader(defaultBank))
	})
	return defaultStore, defaultErr
}

func build(bf bankFile) (*Store, error) {
	s := &Store{
		meta:  make(map[string]models.CategoryMeta),
		pools: make(map[string][]models.ContentItem),
	}

	subs := make(map[string]map[string]bool)
	for _, c := range bf.Categories {
		if c.Key == "" || c.Name == "" {
			return nil, fmt.Errorf("category entry missing key or name")
		}
		if _, dup := s.meta[c.Key]; dup {
			return nil, fmt.Errorf("duplicate category %q", c.Key)
		}
		s.meta[c.Key] = c
		s.categories = append(s.categories, c)
		subs[c.Key] = make(map[string]bool, len(c.Subcategories))
		for _, sub := range c.Subcategories {
			subs[c.Key][sub] = true
		}
	}
	for _, key := range models.Categories {
		if _, ok := s.meta[key]; !ok {
			return nil, fmt.Errorf("category %q is not defined", key)
		}
	}

	for _, difficulty := range models.Difficulties {
		byCategory, ok := bf.Questions[difficulty]
		if !ok {
			return nil, fmt.Errorf("no questions for difficulty %q", difficulty)
		}
		for _, category := range models.Categories {
			qs := byCategory[category]
			if len(qs) == 0 {
				return nil, fmt.Errorf("empty %s pool for category %q", difficulty, category)
			}
			seen := make(map[string]bool, len(qs))
			items := make([]models.ContentItem, 0, len(qs))
			for _, q := range qs {
				if err := validateQuestion(q, subs[category]); err != nil {
					return nil, fmt.Errorf("%s/%s: %w", difficulty, category, err)
				}
				if seen[q.Prompt] {
					return nil, fmt.Errorf("%s/%s: duplicate prompt %q", difficulty, category, q.Prompt)
				}
				seen[q.Prompt] = true
				items = append(items, models.ContentItem{
					Category:    category,
					Subcategory: q.Subcategory,
					Prompt:      q.Prompt,
					Answer:      q.Answer,
					Options:     append([]string(nil), q.Options...),
					Difficulty:  difficulty,
				})
			}
			s.pools[poolKey(difficulty, category)] = items
		}
	}

	for _, r := range bf.Resources {
		if _, ok := s.meta[r.Category]; !ok {
			return nil, fmt.Errorf("resource %q: unknown category %q", r.Title, r.Category)
		}
		if r.Subcategory != "" && !subs[r.Category][r.Subcategory] {
			return nil, fmt.Errorf("resource %q: unknown subcategory %q", r.Title, r.Subcategory)
		}
		if r.Title == "" || r.URL == "" {
			return nil, fmt.Errorf("resource in %q missing title or url", r.Category)
		}
		s.resources = append(s.resources, models.Resource{
			Category:    r.Category,
			Subcategory: r.Subcategory,
			Title:       r.Title,
			URL:         r.URL,
			Kind:        r.Kind,
		})
	}
	return s, nil
}

func validateQuestion(q question, subs map[string]bool) error {
	if q.Prompt == "" || q.Answer == "" {
		return fmt.Errorf("question missing prompt or answer")
	}
	if !subs[q.Subcategory] {
		return fmt.Errorf("%q: unknown subcategory %q", q.Prompt, q.Subcategory)
	}
	for _, o := range q.Options {
		if o == q.Answer {
			return nil
		}
	}
	return fmt.Errorf("%q: answer %q is not among the options", q.Prompt, q.Answer)
}

func poolKey(difficulty, category string) string {
	return difficulty + "|" + category
}

// GetCategoryPool returns a copy of the question pool for (category, difficulty).
// Callers may shuffle the returned slice freely.
func (s *Store) GetCategoryPool(category, difficulty string) []models.ContentItem {
	pool := s.pools[poolKey(difficulty, category)]
	out := make([]models.ContentItem, len(pool))
	copy(out, pool)
	return out
}

// Pools returns the pool of every category for difficulty.
func (s *Store) Pools(difficulty string) map[string][]models.ContentItem {
	out := make(map[string][]models.ContentItem, len(models.Categories))
	for _, c := range models.Categories {
		out[c] = s.GetCategoryPool(c, difficulty)
	}
	return out
}

func (s *Store) Categories() []models.CategoryMeta {
	out := make([]models.CategoryMeta, len(s.categories))
	copy(out, s.categories)
	return out
}

func (s *Store) Category(key string) (models.CategoryMeta, bool) {
	m, ok := s.meta[key]
	return m, ok
}

// Resources returns catalog entries for (category, subcategory). An empty
// subcategory selects the category-wide resources.
func (s *Store) Resources(category, subcategory string) []models.Resource {
	var out []models.Resource
	for _, r := range s.resources {
		if r.Category == category && r.Subcategory == subcategory {
			out = append(out, r)
		}
	}
	return out
}

func (s *Store) Catalog() []models.Resource {
	out := make([]models.Resource, len(s.resources))
	copy(out, s.resources)
	return out
}

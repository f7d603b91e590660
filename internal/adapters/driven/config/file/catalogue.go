package file

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/concierge/internal/core/domain"
)

// CatalogueFileName is the catalogue file looked up in the config directory.
const CatalogueFileName = "catalogue.toml"

//go:embed default_catalogue.toml
var defaultCatalogue []byte

// catalogueFile is the on-disk shape of catalogue.toml.
type catalogueFile struct {
	Categories []categoryEntry `toml:"categories" validate:"required,min=1,dive"`
	Company    domain.Company  `toml:"company" validate:"required"`
}

type categoryEntry struct {
	Name      string   `toml:"name" validate:"required"`
	Partition string   `toml:"partition" validate:"required"`
	Keywords  []string `toml:"keywords" validate:"dive,required"`
}

// Catalogue is the decoded category list and company facts.
type Catalogue struct {
	Categories *domain.Catalogue
	Company    domain.Company
	Source     string
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultCatalogue returns the built-in catalogue.
func DefaultCatalogue() (*Catalogue, error) {
	return decodeCatalogue(defaultCatalogue, "built-in")
}

// DefaultCatalogueTOML returns the built-in catalogue file, for seeding a config directory.
func DefaultCatalogueTOML() []byte {
	return bytes.Clone(defaultCatalogue)
}

// LoadCatalogue reads catalogue.toml from configDir, falling back to the
// built-in catalogue when the file does not exist.
func LoadCatalogue(configDir string) (*Catalogue, error) {
	path := filepath.Join(configDir, CatalogueFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultCatalogue()
	}
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}
	return decodeCatalogue(data, path)
}

func decodeCatalogue(data []byte, source string) (*Catalogue, error) {
	var f catalogueFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", domain.ErrInvalidInput, source, err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("%w: validate %s: %w", domain.ErrInvalidInput, source, err)
	}

	categories := make([]domain.Category, len(f.Categories))
	for i, c := range f.Categories {
		categories[i] = domain.Category{Name: c.Name, Partition: c.Partition, Keywords: c.Keywords}
	}
	cat, err := domain.NewCatalogue(categories)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	return &Catalogue{Categories: cat, Company: f.Company, Source: source}, nil
}

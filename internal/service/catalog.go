package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"sync"

	"propstack/catalog/internal/domain"
	"propstack/catalog/internal/metrics"
	"propstack/catalog/internal/store"

	log "github.com/sirupsen/logrus"
)

// ShowcasePaths are the categories sampled for the featured companies strip.
var ShowcasePaths = []string{
	"Multifamily.PRE-OCCUPANCY.Pre-Discovery/Branding.MarTech",
	"Multifamily.PRE-OCCUPANCY.Distribution/Discovery.Website",
	"Multifamily.OCCUPANCY.Move In.Tenant Tech Pkge",
	"Multifamily.OCCUPANCY.Occupy.Rent Payment",
	"Multifamily.POST-OCCUPANCY.Renew.Lease Renewal",
	"Multifamily.PRE-OCCUPANCY.Site Visit.Interior Access",
}

const (
	featuredPerCategory = 3
	featuredTotal       = 6
)

type CompanyMatch struct {
	Path    string               `json:"path"`
	Index   int                  `json:"index"`
	Company domain.CompanyRecord `json:"company"`
}

type FeaturedCompany struct {
	domain.CompanyRecord
	Category string `json:"category"`
}

// LogoCandidate is a company whose logo is missing or the placeholder.
type LogoCandidate struct {
	Path string
	Name string
	URL  string
}

// Catalog is the read and mutation API over the persisted taxonomy document.
// Every mutation loads the full document, edits one company list and writes
// the full document back. The mutex serializes that cycle inside one process
// only; two processes sharing a store still race and the last write wins.
type Catalog struct {
	documents store.DocumentStore
	recorder  metrics.Recorder
	mutex     sync.Mutex
}

func NewCatalog(documents store.DocumentStore, recorder metrics.Recorder) *Catalog {
	if recorder == nil {
		recorder = metrics.Noop()
	}
	return &Catalog{
		documents: documents,
		recorder:  recorder,
	}
}

// Document returns the persisted document, seeding it on first use.
func (c *Catalog) Document(ctx context.Context) (*domain.Node, error) {
	return c.documents.Load(ctx)
}

// Original returns the seed document, untouched by mutations.
func (c *Catalog) Original() *domain.Node {
	return c.documents.Original()
}

// Resolve returns the node at path in the persisted document.
func (c *Catalog) Resolve(ctx context.Context, path string) (*domain.Node, error) {
	root, err := c.documents.Load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Resolve(root, path)
}

// Companies returns the company list at path.
func (c *Catalog) Companies(ctx context.Context, path string) ([]domain.CompanyRecord, error) {
	root, err := c.documents.Load(ctx)
	if err != nil {
		return nil, err
	}
	list, err := domain.ResolveList(root, path)
	if err != nil {
		return nil, err
	}
	return list.Companies(), nil
}

func (c *Catalog) Categories(ctx context.Context) ([]domain.CategoryInfo, error) {
	root, err := c.documents.Load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.EnumerateCategories(root), nil
}

func (c *Catalog) CompanyLists(ctx context.Context) ([]domain.CompanyList, error) {
	root, err := c.documents.Load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.CompanyLists(root), nil
}

// Grid splits the list at path into company cards and related category labels.
func (c *Catalog) Grid(ctx context.Context, path string) (domain.Grid, error) {
	companies, err := c.Companies(ctx, path)
	if err != nil {
		return domain.Grid{}, err
	}
	return domain.BuildGrid(path, companies), nil
}

// FindCompany returns the first company named name, in document order.
// Names are not unique; later duplicates are unreachable through this lookup.
func (c *Catalog) FindCompany(ctx context.Context, name string) (*CompanyMatch, error) {
	lists, err := c.CompanyLists(ctx)
	if err != nil {
		return nil, err
	}

	for _, list := range lists {
		for i, company := range list.Companies {
			if company.IsReference() || company.Name != name {
				continue
			}
			return &CompanyMatch{Path: list.Path, Index: i, Company: company}, nil
		}
	}

	return nil, fmt.Errorf("%w: %q", domain.ErrCompanyNotFound, name)
}

// Featured samples up to three companies from each showcase category.
func (c *Catalog) Featured(ctx context.Context) ([]FeaturedCompany, error) {
	root, err := c.documents.Load(ctx)
	if err != nil {
		return nil, err
	}

	featured := make([]FeaturedCompany, 0, featuredTotal)
	for _, path := range ShowcasePaths {
		list, err := domain.ResolveList(root, path)
		if err != nil {
			continue
		}

		taken := 0
		for _, company := range list.Companies() {
			if company.IsReference() {
				continue
			}
			if taken == featuredPerCategory {
				break
			}
			featured = append(featured, FeaturedCompany{
				CompanyRecord: company,
				Category:      domain.LastSegment(path),
			})
			taken++
		}
	}

	if len(featured) > featuredTotal {
		featured = featured[:featuredTotal]
	}
	return featured, nil
}

// MissingLogos lists companies that still show the placeholder logo.
func (c *Catalog) MissingLogos(ctx context.Context) ([]LogoCandidate, error) {
	lists, err := c.CompanyLists(ctx)
	if err != nil {
		return nil, err
	}

	candidates := make([]LogoCandidate, 0)
	for _, list := range lists {
		for _, company := range list.Companies {
			if company.IsReference() || company.HasLogo() || company.URL == "" {
				continue
			}
			candidates = append(candidates, LogoCandidate{
				Path: list.Path,
				Name: company.Name,
				URL:  company.URL,
			})
		}
	}
	return candidates, nil
}

// Add appends record to the list at path. The logo defaults to the placeholder.
// Duplicate names are accepted.
func (c *Catalog) Add(ctx context.Context, path string, record domain.CompanyRecord) error {
	// References point at another category and carry no logo
	if !record.IsReference() {
		if err := record.Validate(); err != nil {
			c.recorder.Mutation("add", err)
			return err
		}
		record = record.WithDefaults()
	}

	err := c.mutate(ctx, "add", path, func(list *domain.Node) error {
		return list.Append(record)
	})
	if err == nil {
		log.Infof("➕ Added %s to %s", cmp.Or(record.Name, "see "+record.See), path)
	}
	return err
}

// Update merges patch over the record at index. Empty patch fields keep the
// stored value.
func (c *Catalog) Update(ctx context.Context, path string, index int, patch domain.CompanyRecord) error {
	err := c.mutate(ctx, "update", path, func(list *domain.Node) error {
		current, err := list.At(index)
		if err != nil {
			return err
		}

		merged := current.Merge(patch)
		if !merged.IsReference() {
			if err := merged.Validate(); err != nil {
				return err
			}
		}
		return list.Replace(index, merged)
	})
	if err == nil {
		log.Infof("✏️ Updated company %d in %s", index, path)
	}
	return err
}

// Delete removes the record at index.
func (c *Catalog) Delete(ctx context.Context, path string, index int) error {
	err := c.mutate(ctx, "delete", path, func(list *domain.Node) error {
		return list.Remove(index)
	})
	if err == nil {
		log.Infof("🗑️ Deleted company %d from %s", index, path)
	}
	return err
}

// Reset discards every mutation and restores the original document.
func (c *Catalog) Reset(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	err := c.documents.Reset(ctx)
	c.recorder.Mutation("reset", err)
	if err != nil {
		log.Errorf("❌ Failed to reset catalog: %v", err)
	}
	return err
}

// SetLogo stores logo on the first company named name at path that still
// lacks a real logo.
func (c *Catalog) SetLogo(ctx context.Context, path, name, logo string) error {
	return c.mutate(ctx, "set_logo", path, func(list *domain.Node) error {
		for i, company := range list.Companies() {
			if company.Name != name || company.IsReference() || company.HasLogo() {
				continue
			}
			company.Logo = logo
			return list.Replace(i, company)
		}
		return fmt.Errorf("%w: %q without logo in %q", domain.ErrCompanyNotFound, name, path)
	})
}

func (c *Catalog) mutate(ctx context.Context, op, path string, edit func(list *domain.Node) error) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	err := c.apply(ctx, path, edit)
	c.recorder.Mutation(op, err)

	if err != nil {
		if errors.Is(err, store.ErrPersistenceUnavailable) {
			log.Errorf("❌ Failed to %s in %s: %v", op, path, err)
		} else {
			log.Debugf("Rejected %s in %s: %v", op, path, err)
		}
	}
	return err
}

// apply edits a fresh copy of the document and reports success only once the
// store accepted the write.
func (c *Catalog) apply(ctx context.Context, path string, edit func(list *domain.Node) error) error {
	root, err := c.documents.Load(ctx)
	if err != nil {
		return err
	}

	list, err := domain.ResolveList(root, path)
	if err != nil {
		return err
	}

	if err := edit(list); err != nil {
		return err
	}

	return c.documents.Save(ctx, root)
}

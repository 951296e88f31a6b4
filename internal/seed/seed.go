// Package seed bootstraps the records a fresh install needs before the first
// request: the internal operations tenant and the default credit packages.
package seed

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	organizationdomain "github.com/veridocs/veridocs/internal/organization/domain"
	"github.com/veridocs/veridocs/pkg/db/option"
	"github.com/veridocs/veridocs/pkg/repository"
	"gorm.io/gorm"
)

const internalOrgName = "Operations"

type defaultPackage struct {
	Name           string
	MonthlyCredits int64
	PriceCents     int64
}

var defaultPackages = []defaultPackage{
	{Name: "Starter", MonthlyCredits: 500, PriceCents: 4900},
	{Name: "Business", MonthlyCredits: 2500, PriceCents: 19900},
}

// EnsureDefaults is idempotent; it only inserts what is missing.
func EnsureDefaults(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureInternalOrg(ctx, tx, node); err != nil {
			return err
		}
		return ensurePackages(ctx, tx, node)
	})
}

func ensureInternalOrg(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	orgs := repository.ProvideStore[organizationdomain.Organization](tx)

	existing, err := orgs.FindOne(ctx, &organizationdomain.Organization{
		Type: organizationdomain.OrganizationTypeInternal,
	})
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	return orgs.Create(ctx, &organizationdomain.Organization{
		ID:     node.Generate(),
		Name:   internalOrgName,
		Type:   organizationdomain.OrganizationTypeInternal,
		Status: organizationdomain.OrganizationStatusActive,
	})
}

func ensurePackages(ctx context.Context, tx *gorm.DB, node *snowflake.Node) error {
	packages := repository.ProvideStore[organizationdomain.Package](tx)

	existing, err := packages.Find(ctx, &organizationdomain.Package{}, option.WithOrderBy("name ASC"))
	if err != nil {
		return err
	}

	present := make(map[string]bool, len(existing))
	for _, pkg := range existing {
		present[pkg.Name] = true
	}

	for _, def := range defaultPackages {
		if present[def.Name] {
			continue
		}
		err := packages.Create(ctx, &organizationdomain.Package{
			ID:             node.Generate(),
			Name:           def.Name,
			MonthlyCredits: def.MonthlyCredits,
			PriceCents:     def.PriceCents,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/infrastructure/cache"
	"digimarket.backend/internal/infrastructure/repositories"
	"digimarket.backend/internal/usecases"
	"digimarket.backend/pkg/crypto"
	"digimarket.backend/pkg/utils"
)

// SeedFile is the YAML document accepted by `marketctl seed`.
type SeedFile struct {
	Tenants []SeedTenant `yaml:"tenants"`
	Admins  []SeedAdmin  `yaml:"admins"`
}

type SeedTenant struct {
	Key              string                    `yaml:"key"`
	Name             string                    `yaml:"name"`
	Mode             entities.TenantMode       `yaml:"mode"`
	CatalogMode      entities.CatalogMode      `yaml:"catalogMode"`
	PaymentsEnabled  bool                      `yaml:"paymentsEnabled"`
	VendorOnboarding entities.VendorOnboarding `yaml:"vendorOnboarding"`
	Domains          []string                  `yaml:"domains"`
}

type SeedAdmin struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name"`
	Password string `yaml:"password"`
}

func parseSeedFile(r io.Reader) (*SeedFile, error) {
	var file SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid seed file: %w", err)
	}
	for i, a := range file.Admins {
		if strings.TrimSpace(a.Email) == "" || a.Password == "" {
			return nil, fmt.Errorf("invalid seed file: admin %d needs email and password", i)
		}
	}
	return &file, nil
}

func (f *CommandFactory) NewSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create tenants, domains and admin accounts. Usage: marketctl seed -f [seed.yaml]",
		Long:  "Create tenants, domains and admin accounts from a YAML file. Existing records are kept, so the command can be rerun.",
		Args:  cobra.ExactArgs(0),

		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("file")
			if path == "" {
				cmd.Println("Seed file is required")
				return ErrSeedFileRequired
			}

			fh, err := os.Open(path)
			if err != nil {
				return err
			}
			defer fh.Close()

			file, err := parseSeedFile(fh)
			if err != nil {
				return err
			}
			if err := f.connect(); err != nil {
				return err
			}
			return runSeed(cmd.Context(), f.db, f.cfg.Tenant.DefaultKey, f.cfg.Server.DevHostname, file, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringP("file", "f", "", "path to the seed YAML file")
	return cmd
}

func runSeed(ctx context.Context, db *gorm.DB, defaultKey, devHostname string, file *SeedFile, out io.Writer) error {
	tenants := usecases.NewTenantUsecase(
		repositories.NewTenantRepository(db),
		repositories.NewTenantDomainRepository(db),
		repositories.NewUnitOfWork(db),
		cache.NewMemoryTenantCache(0),
		defaultKey,
		devHostname,
	)
	users := repositories.NewUserRepository(db)

	for _, t := range file.Tenants {
		if err := seedTenant(ctx, tenants, t, out); err != nil {
			return fmt.Errorf("tenant %s: %w", t.Key, err)
		}
	}
	for _, a := range file.Admins {
		if err := seedAdmin(ctx, users, a, out); err != nil {
			return fmt.Errorf("admin %s: %w", a.Email, err)
		}
	}
	return nil
}

func seedTenant(ctx context.Context, tenants *usecases.TenantUsecase, t SeedTenant, out io.Writer) error {
	key := utils.Slugify(t.Key)
	if key == "" {
		return domainerrors.Validation("tenant key is required")
	}
	tenant, err := tenants.GetTenant(ctx, key)
	switch {
	case err == nil:
		fmt.Fprintf(out, "Tenant %s exists\n", tenant.Key)
	case errors.Is(err, domainerrors.ErrNotFound):
		tenant, err = tenants.CreateTenant(ctx, &entities.CreateTenantInput{
			Key:              key,
			Name:             t.Name,
			Mode:             t.Mode,
			CatalogMode:      t.CatalogMode,
			PaymentsEnabled:  t.PaymentsEnabled,
			VendorOnboarding: t.VendorOnboarding,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Tenant %s created\n", tenant.Key)
	default:
		return err
	}

	existing, err := tenants.ListDomains(ctx, tenant.Key)
	if err != nil {
		return err
	}
	bound := make(map[string]bool, len(existing))
	for _, d := range existing {
		bound[d.Domain] = true
	}
	for _, raw := range t.Domains {
		host := entities.NormalizeHost(raw)
		if bound[host] {
			continue
		}
		d, err := tenants.AddDomain(ctx, tenant.Key, &entities.AddDomainInput{Domain: raw})
		if err != nil {
			return err
		}
		bound[d.Domain] = true
		fmt.Fprintf(out, "Domain %s bound to %s\n", d.Domain, tenant.Key)
	}
	return nil
}

func seedAdmin(ctx context.Context, users *repositories.UserRepository, a SeedAdmin, out io.Writer) error {
	email := strings.ToLower(strings.TrimSpace(a.Email))
	user, err := users.GetByEmail(ctx, email)
	if err == nil {
		if user.Role != entities.UserRoleAdmin {
			if err := users.UpdateRole(ctx, user.ID, entities.UserRoleAdmin); err != nil {
				return err
			}
			fmt.Fprintf(out, "User %s promoted to admin\n", email)
			return nil
		}
		fmt.Fprintf(out, "Admin %s exists\n", email)
		return nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return err
	}

	hash, err := crypto.HashPassword(a.Password)
	if err != nil {
		return err
	}
	if err := users.Create(ctx, &entities.User{
		Email:        email,
		Name:         strings.TrimSpace(a.Name),
		PasswordHash: hash,
		Role:         entities.UserRoleAdmin,
	}); err != nil {
		return err
	}
	fmt.Fprintf(out, "Admin %s created\n", email)
	return nil
}

package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"digimarket.backend/internal/domain/entities"
	domainerrors "digimarket.backend/internal/domain/errors"
	"digimarket.backend/internal/domain/lifecycle"
	"digimarket.backend/internal/domain/repositories"
	"digimarket.backend/pkg/crypto"
	"digimarket.backend/pkg/logger"
	"digimarket.backend/pkg/sanitize"
	"digimarket.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
)

const (
	maxSocialLinks   = 10
	slugSuffixTries  = 5
	defaultSlugStart = "vendor"
)

// VendorUsecase handles vendor onboarding, profiles, entitlement checks and
// admin moderation of vendors.
type VendorUsecase struct {
	profileRepo repositories.VendorProfileRepository
	userRepo    repositories.UserRepository
	productRepo repositories.ProductRepository
	uow         repositories.UnitOfWork
	events      EventPublisher
}

// NewVendorUsecase creates a new vendor usecase
func NewVendorUsecase(
	profileRepo repositories.VendorProfileRepository,
	userRepo repositories.UserRepository,
	productRepo repositories.ProductRepository,
	uow repositories.UnitOfWork,
	events EventPublisher,
) *VendorUsecase {
	return &VendorUsecase{
		profileRepo: profileRepo,
		userRepo:    userRepo,
		productRepo: productRepo,
		uow:         uow,
		events:      events,
	}
}

// CanPublish reports whether the user may publish products in the tenant.
// A missing profile yields ErrProfileMissing, any status other than APPROVED
// yields ErrNotApproved.
func (u *VendorUsecase) CanPublish(ctx context.Context, tenantKey string, userID uuid.UUID) (entities.Entitlement, error) {
	profile, err := u.profileRepo.GetByTenantAndUser(ctx, tenantKey, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return entities.Entitlement{}, domainerrors.ErrProfileMissing
		}
		return entities.Entitlement{}, err
	}
	if !profile.IsApproved() {
		return entities.Entitlement{}, domainerrors.ErrNotApproved
	}
	return entities.Entitlement{Allowed: true, ProfileID: profile.ID}, nil
}

// ResolveOwner builds the server-side owner of products written by userID in
// the tenant. Pending profiles may keep drafts; blocked profiles may not write.
func (u *VendorUsecase) ResolveOwner(ctx context.Context, tenantKey string, userID uuid.UUID) (entities.ProductOwner, error) {
	profile, err := u.profileRepo.GetByTenantAndUser(ctx, tenantKey, userID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return entities.ProductOwner{}, domainerrors.ErrProfileMissing
		}
		return entities.ProductOwner{}, err
	}
	if profile.Status == entities.VendorStatusBlocked {
		return entities.ProductOwner{}, domainerrors.Wrap(domainerrors.ErrForbidden, "Dein Verkäuferprofil ist gesperrt")
	}
	return entities.NewProductOwner(tenantKey, userID, profile), nil
}

// GetOwnProfile returns the caller's profile in the tenant
func (u *VendorUsecase) GetOwnProfile(ctx context.Context, tenantKey string, userID uuid.UUID) (*entities.VendorProfile, error) {
	profile, err := u.profileRepo.GetByTenantAndUser(ctx, tenantKey, userID)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.ErrProfileMissing
	}
	return profile, err
}

// CreateProfile onboards the caller as a vendor of the tenant according to
// the tenant's onboarding policy.
func (u *VendorUsecase) CreateProfile(ctx context.Context, tenant entities.TenantContext, userID uuid.UUID, input *entities.VendorProfileInput) (*entities.VendorProfile, error) {
	if tenant.VendorOnboarding == entities.VendorOnboardingClosed {
		return nil, domainerrors.Wrap(domainerrors.ErrForbidden, "Dieser Marktplatz nimmt keine neuen Verkäufer auf")
	}

	profile := &entities.VendorProfile{
		TenantKey: tenant.Key,
		UserID:    userID,
		Status:    entities.VendorStatusPending,
		IsPublic:  true,
	}
	if err := applyProfileInput(profile, input); err != nil {
		return nil, err
	}
	autoApprove := tenant.VendorOnboarding == entities.VendorOnboardingAutoApprove
	if autoApprove {
		profile.Status = entities.VendorStatusApproved
		profile.ApprovedAt = null.TimeFrom(time.Now().UTC())
	}

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if _, err := u.profileRepo.GetByTenantAndUser(txCtx, tenant.Key, userID); err == nil {
			return domainerrors.Conflict("Verkäuferprofil existiert bereits")
		} else if !errors.Is(err, domainerrors.ErrNotFound) {
			return err
		}

		slug, err := u.uniqueSlug(txCtx, tenant.Key, slugBase(input), uuid.Nil)
		if err != nil {
			return err
		}
		profile.Slug = slug

		if err := u.profileRepo.Create(txCtx, profile); err != nil {
			if errors.Is(err, domainerrors.ErrConflict) {
				return domainerrors.Conflict("Verkäuferprofil existiert bereits")
			}
			return err
		}
		if autoApprove {
			return u.promote(txCtx, userID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if autoApprove {
		u.publishStatus(ctx, profile)
	}
	return profile, nil
}

// UpdateProfile edits the caller's own profile. Status and visibility are
// admin-only and never touched here.
func (u *VendorUsecase) UpdateProfile(ctx context.Context, tenantKey string, userID uuid.UUID, input *entities.VendorProfileInput) (*entities.VendorProfile, error) {
	var profile *entities.VendorProfile
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		existing, err := u.profileRepo.GetByTenantAndUser(u.uow.WithLock(txCtx), tenantKey, userID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return domainerrors.ErrProfileMissing
			}
			return err
		}
		if err := applyProfileInput(existing, input); err != nil {
			return err
		}

		want := utils.Slugify(input.Slug)
		if want != "" && want != existing.Slug {
			slug, err := u.uniqueSlug(txCtx, tenantKey, want, existing.ID)
			if err != nil {
				return err
			}
			existing.Slug = slug
		}

		if err := u.profileRepo.Update(txCtx, existing); err != nil {
			if errors.Is(err, domainerrors.ErrConflict) {
				return domainerrors.Conflict("Profil-URL ist bereits vergeben")
			}
			return err
		}
		profile = existing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// ListProfiles lists vendor profiles of a tenant for moderation
func (u *VendorUsecase) ListProfiles(ctx context.Context, tenantKey string, status *entities.VendorStatus, pagination utils.PaginationParams) ([]*entities.VendorProfile, int64, error) {
	return u.profileRepo.List(ctx, tenantKey, status, pagination)
}

// SetVendorStatus moves a profile to a new moderation status. The first
// approval upgrades USER to VENDOR; blocking suspends every product of the
// vendor in that tenant. Both happen in the same transaction as the status.
func (u *VendorUsecase) SetVendorStatus(ctx context.Context, profileID uuid.UUID, input *entities.SetVendorStatusInput) (*entities.VendorProfile, error) {
	t, err := lifecycle.VendorTransitionTo(input.Status)
	if err != nil {
		return nil, err
	}

	var (
		profile *entities.VendorProfile
		changed bool
		blocked int64
	)
	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		p, err := u.profileRepo.GetByID(u.uow.WithLock(txCtx), profileID)
		if err != nil {
			return err
		}

		next, moved, err := lifecycle.Vendor(txCtx, p.Status, t)
		if err != nil {
			return err
		}
		changed = moved
		p.Status = next
		if input.IsPublic != nil && *input.IsPublic != p.IsPublic {
			p.IsPublic = *input.IsPublic
			changed = true
		}

		switch next {
		case entities.VendorStatusApproved:
			if !p.ApprovedAt.Valid {
				p.ApprovedAt = null.TimeFrom(time.Now().UTC())
			}
			if err := u.promote(txCtx, p.UserID); err != nil {
				return err
			}
		case entities.VendorStatusBlocked:
			n, err := u.productRepo.BlockByVendor(txCtx, p.TenantKey, p.UserID)
			if err != nil {
				return err
			}
			blocked = n
		}

		if err := u.profileRepo.Update(txCtx, p); err != nil {
			return err
		}
		profile = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if blocked > 0 {
		logger.Info(ctx, "Vendor blocked, products suspended",
			zap.String("profile_id", profile.ID.String()),
			zap.Int64("products", blocked),
		)
	}
	if changed {
		u.publishStatus(ctx, profile)
	}
	return profile, nil
}

func (u *VendorUsecase) promote(ctx context.Context, userID uuid.UUID) error {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.PromoteToVendor() {
		return nil
	}
	return u.userRepo.UpdateRole(ctx, user.ID, user.Role)
}

func (u *VendorUsecase) publishStatus(ctx context.Context, p *entities.VendorProfile) {
	publish(ctx, u.events, entities.NewDomainEvent(entities.EventVendorStatusChanged, p.ID.String(), p.TenantKey, map[string]interface{}{
		"profileId": p.ID.String(),
		"userId":    p.UserID.String(),
		"status":    string(p.Status),
		"isPublic":  p.IsPublic,
	}))
}

// uniqueSlug returns base, or base with a random suffix when taken.
func (u *VendorUsecase) uniqueSlug(ctx context.Context, tenantKey, base string, excludeID uuid.UUID) (string, error) {
	candidate := base
	for i := 0; i < slugSuffixTries; i++ {
		taken, err := u.profileRepo.SlugTaken(ctx, tenantKey, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		suffix, err := crypto.RandomToken(4)
		if err != nil {
			return "", err
		}
		candidate = trimSlug(base, len(suffix)+1) + "-" + strings.ToLower(suffix)
	}
	return "", domainerrors.Conflict("Profil-URL ist bereits vergeben")
}

func trimSlug(slug string, reserve int) string {
	if max := 64 - reserve; len(slug) > max {
		return strings.TrimRight(slug[:max], "-")
	}
	return slug
}

func slugBase(input *entities.VendorProfileInput) string {
	if s := utils.Slugify(input.Slug); s != "" {
		return s
	}
	if s := utils.Slugify(input.DisplayName); s != "" {
		return s
	}
	return defaultSlugStart
}

// applyProfileInput copies sanitised vendor input onto p.
func applyProfileInput(p *entities.VendorProfile, input *entities.VendorProfileInput) error {
	name, err := sanitize.Text(input.DisplayName)
	if err != nil || len([]rune(name)) < 2 {
		return domainerrors.Validation("Anzeigename ist ungültig")
	}
	bio, err := sanitize.Text(input.Bio)
	if err != nil {
		return domainerrors.Validation("Beschreibung ist ungültig")
	}
	avatar, err := sanitize.URL(input.AvatarURL)
	if err != nil {
		return domainerrors.Validation("Avatar-URL ist ungültig")
	}
	links, err := sanitizeSocialLinks(input.SocialLinks)
	if err != nil {
		return err
	}

	p.DisplayName = name
	p.Bio = bio
	p.AvatarURL = avatar
	p.SocialLinks = links
	return nil
}

func sanitizeSocialLinks(in map[string]string) (map[string]string, error) {
	if len(in) == 0 {
		return nil, nil
	}
	if len(in) > maxSocialLinks {
		return nil, domainerrors.Validation("Zu viele Social-Links")
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		key := utils.Slugify(k)
		if key == "" {
			continue
		}
		link, err := sanitize.URL(v)
		if err != nil {
			return nil, domainerrors.Validation("Social-Link " + key + " ist ungültig")
		}
		if link != "" {
			out[key] = link
		}
	}
	return out, nil
}

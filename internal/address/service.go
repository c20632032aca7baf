package address

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Service is the default-selection manager for addresses. Every mutation
// leaves each owner with at most one default, and with exactly one whenever
// the owner has any address — except the documented relaxation where an
// update explicitly unsets the default flag.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput carries the request attributes for a new or updated address.
type CreateInput struct {
	Type      string
	FullName  string
	Phone     string
	Line1     string
	Line2     string
	City      string
	State     string
	Zip       string
	Country   string
	IsDefault bool
}

func (s *Service) List(ctx context.Context, userID int) ([]Address, error) {
	if userID <= 0 {
		return nil, ErrNotFound
	}
	return s.repo.ListByOwner(ctx, userID)
}

// Create adds an address. The owner's first address is forced default
// regardless of the request; when the new address is default all sibling
// defaults are cleared within the same repository transaction.
func (s *Service) Create(ctx context.Context, userID int, in CreateInput) (Address, error) {
	if userID <= 0 {
		return Address{}, ErrNotFound
	}
	if err := validate(in); err != nil {
		return Address{}, err
	}

	count, err := s.repo.CountByOwner(ctx, userID)
	if err != nil {
		return Address{}, err
	}
	isDefault := in.IsDefault
	if count == 0 {
		isDefault = true
	}

	now := time.Now().UTC().Format(time.RFC3339)
	return s.repo.Insert(ctx, Address{
		UserID:    userID,
		Type:      in.Type,
		FullName:  in.FullName,
		Phone:     in.Phone,
		Line1:     in.Line1,
		Line2:     in.Line2,
		City:      in.City,
		State:     in.State,
		Zip:       in.Zip,
		Country:   in.Country,
		IsDefault: isDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}, isDefault)
}

// Update rewrites an address owned by userID. Requesting isDefault=true
// clears all sibling defaults first; requesting isDefault=false is allowed
// unconditionally even though it can leave the owner without a default.
// Cross-owner access surfaces as NotFound so existence never leaks.
func (s *Service) Update(ctx context.Context, userID, id int, in CreateInput) (Address, error) {
	if userID <= 0 || id <= 0 {
		return Address{}, ErrNotFound
	}
	if err := validate(in); err != nil {
		return Address{}, err
	}

	current, err := s.repo.GetByOwner(ctx, userID, id)
	if err != nil {
		return Address{}, err
	}

	clearSiblings := in.IsDefault && !current.IsDefault
	return s.repo.Update(ctx, Address{
		ID:        id,
		UserID:    userID,
		Type:      in.Type,
		FullName:  in.FullName,
		Phone:     in.Phone,
		Line1:     in.Line1,
		Line2:     in.Line2,
		City:      in.City,
		State:     in.State,
		Zip:       in.Zip,
		Country:   in.Country,
		IsDefault: in.IsDefault,
		CreatedAt: current.CreatedAt,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}, clearSiblings)
}

// Delete removes an address. The current default may only be deleted when it
// is the owner's last address; otherwise the caller must reassign the
// default first.
func (s *Service) Delete(ctx context.Context, userID, id int) error {
	if userID <= 0 || id <= 0 {
		return ErrNotFound
	}

	current, err := s.repo.GetByOwner(ctx, userID, id)
	if err != nil {
		return err
	}
	if current.IsDefault {
		siblings, err := s.repo.CountSiblings(ctx, userID, id)
		if err != nil {
			return err
		}
		if siblings > 0 {
			return ErrDefaultInUse
		}
	}
	return s.repo.Delete(ctx, userID, id)
}

// SetDefault promotes an address to be the owner's single default. The call
// is idempotent: promoting the current default returns it unchanged.
func (s *Service) SetDefault(ctx context.Context, userID, id int) (Address, error) {
	if userID <= 0 || id <= 0 {
		return Address{}, ErrNotFound
	}

	current, err := s.repo.GetByOwner(ctx, userID, id)
	if err != nil {
		return Address{}, err
	}
	if current.IsDefault {
		return current, nil
	}
	return s.repo.PromoteDefault(ctx, userID, id)
}

func validate(in CreateInput) error {
	var missing []string
	if strings.TrimSpace(in.FullName) == "" || len(strings.TrimSpace(in.FullName)) < 3 {
		missing = append(missing, "fullName must be at least 3 characters")
	}
	if in.Phone == "" {
		missing = append(missing, "phone is required")
	}
	if in.Line1 == "" {
		missing = append(missing, "line1 is required")
	}
	if in.City == "" {
		missing = append(missing, "city is required")
	}
	if in.State == "" {
		missing = append(missing, "state is required")
	}
	if in.Zip == "" {
		missing = append(missing, "zip is required")
	}
	if in.Country == "" {
		missing = append(missing, "country is required")
	}
	if !validType(in.Type) {
		missing = append(missing, "type must be Home, Work or Other")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(missing, ", "))
	}
	return nil
}

package service

import (
	"context"
	"sort"
	"strings"

	"github.com/finledger/finledger-backend/internal/domain"
	"github.com/rs/zerolog/log"
)

// Display-order gap policy. Small groups get gapped values (10, 20, ...) so
// an administrator can reorder accounts by hand without renumbering the
// whole group; larger groups fall back to dense numbering. The threshold and
// step are display conveniences, not business rules.
const (
	DefaultOrderGapThreshold = 9
	DefaultOrderGapStep      = 10
)

// SeedAccount is one candidate account in a bulk import, carrying the
// caller-supplied ordering key used to sort its group.
type SeedAccount struct {
	Input    CreateAccountInput
	OrderKey int
}

// SeedOrderingConfig tunes the display-order gap policy.
type SeedOrderingConfig struct {
	GapThreshold int
	GapStep      int
}

// DefaultSeedOrdering returns the stock gap policy.
func DefaultSeedOrdering() SeedOrderingConfig {
	return SeedOrderingConfig{GapThreshold: DefaultOrderGapThreshold, GapStep: DefaultOrderGapStep}
}

// AssignDisplayOrder sorts one (category, subcategory) group by ordering key
// ascending (ties broken by case-insensitive name) and assigns each member
// its display order: index*step+step while the group fits under the gap
// threshold,
// dense index+1 otherwise. The slice is sorted in place.
func AssignDisplayOrder(group []SeedAccount, cfg SeedOrderingConfig) {
	sort.SliceStable(group, func(i, j int) bool {
		if group[i].OrderKey != group[j].OrderKey {
			return group[i].OrderKey < group[j].OrderKey
		}
		return strings.ToLower(group[i].Input.Name) < strings.ToLower(group[j].Input.Name)
	})

	gapped := len(group) <= cfg.GapThreshold
	for i := range group {
		if gapped {
			group[i].Input.DisplayOrder = int32(i*cfg.GapStep + cfg.GapStep)
		} else {
			group[i].Input.DisplayOrder = int32(i + 1)
		}
	}
}

// SeedService bulk-creates accounts through the registry, grouping
// candidates by (category, subcategory) and applying the display-order
// policy to each group.
type SeedService struct {
	accounts *AccountService
	ordering SeedOrderingConfig
}

// NewSeedService creates a new SeedService with the default ordering policy
func NewSeedService(accounts *AccountService) *SeedService {
	return &SeedService{accounts: accounts, ordering: DefaultSeedOrdering()}
}

// SetOrdering overrides the display-order gap policy
func (s *SeedService) SetOrdering(cfg SeedOrderingConfig) {
	if cfg.GapStep > 0 && cfg.GapThreshold > 0 {
		s.ordering = cfg
	}
}

// SeedAccounts creates all candidates, one group at a time. Creation goes
// through the registry so numbering and validation rules apply unchanged.
// Returns the accounts created; the first creation error aborts the run.
func (s *SeedService) SeedAccounts(ctx context.Context, candidates []SeedAccount) ([]*domain.Account, error) {
	groups := make(map[string][]SeedAccount)
	var groupOrder []string
	for _, c := range candidates {
		key := c.Input.CategoryName + "\x00" + c.Input.SubcategoryName
		if _, seen := groups[key]; !seen {
			groupOrder = append(groupOrder, key)
		}
		groups[key] = append(groups[key], c)
	}

	var created []*domain.Account
	for _, key := range groupOrder {
		group := groups[key]
		AssignDisplayOrder(group, s.ordering)
		for _, c := range group {
			account, err := s.accounts.CreateAccount(ctx, c.Input)
			if err != nil {
				log.Error().Err(err).
					Str("name", c.Input.Name).
					Str("category", c.Input.CategoryName).
					Msg("Seed account creation failed")
				return created, err
			}
			created = append(created, account)
		}
	}
	return created, nil
}

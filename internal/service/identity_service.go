package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
)

type personRepository interface {
	ListByColumn(ctx context.Context, table models.PersonTable, column models.PersonKeyColumn, keys []string) ([]models.PersonRow, error)
	FindByKey(ctx context.Context, table models.PersonTable, column models.PersonKeyColumn, key string) (*models.PersonRow, error)
}

// personKeyStrategy names the authoritative key column of a profile table and
// the column tried when the authoritative one has no match.
type personKeyStrategy struct {
	primary   models.PersonKeyColumn
	alternate models.PersonKeyColumn
}

var personKeyStrategies = map[models.PersonTable]personKeyStrategy{
	models.PersonTableTeachers: {primary: models.PersonKeyAccountID, alternate: models.PersonKeyRowID},
	models.PersonTableStudents: {primary: models.PersonKeyRowID, alternate: models.PersonKeyAccountID},
}

func strategyFor(table models.PersonTable) personKeyStrategy {
	if strategy, ok := personKeyStrategies[table]; ok {
		return strategy
	}
	return personKeyStrategy{primary: models.PersonKeyRowID, alternate: models.PersonKeyAccountID}
}

// IdentityService reconciles people stored under a surrogate row id in one
// table and a shared account id in another. Nothing past this service sees
// the raw key columns.
type IdentityService struct {
	people personRepository
	cache  *ProfileCache
	logger *zap.Logger
}

// NewIdentityService constructs an IdentityService. cache may be nil.
func NewIdentityService(people personRepository, cache *ProfileCache, logger *zap.Logger) *IdentityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{people: people, cache: cache, logger: logger}
}

// NormalizePerson maps a raw profile row to a PersonIdentity carrying the
// table's canonical id. Missing display fields become UnknownDisplayValue.
func NormalizePerson(table models.PersonTable, row models.PersonRow) models.PersonIdentity {
	return models.PersonIdentity{
		ID:       canonicalKey(table, row),
		FullName: displayValue(row.FullName),
		Email:    displayValue(row.Email),
		Phone:    displayValue(row.Phone),
	}
}

// UnknownPerson is the placeholder for a key with no profile row.
func UnknownPerson(key string) models.PersonIdentity {
	return models.PersonIdentity{
		ID:       key,
		FullName: models.UnknownDisplayValue,
		Email:    models.UnknownDisplayValue,
		Phone:    models.UnknownDisplayValue,
	}
}

func canonicalKey(table models.PersonTable, row models.PersonRow) string {
	strategy := strategyFor(table)
	if key := columnValue(row, strategy.primary); key != "" {
		return key
	}
	return columnValue(row, strategy.alternate)
}

func columnValue(row models.PersonRow, column models.PersonKeyColumn) string {
	switch column {
	case models.PersonKeyAccountID:
		if row.AccountID != nil {
			return strings.TrimSpace(*row.AccountID)
		}
		return ""
	default:
		return strings.TrimSpace(row.RowID)
	}
}

func displayValue(value *string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return models.UnknownDisplayValue
	}
	return *value
}

// Resolve maps every key to an identity. A key is matched on the table's
// authoritative column first and on the alternate column when that finds
// nothing. Unmatched keys are absent from the map. On fetch failure the
// identities resolved so far are returned together with the error.
func (s *IdentityService) Resolve(ctx context.Context, table models.PersonTable, keys []string) (map[string]models.PersonIdentity, error) {
	resolved := make(map[string]models.PersonIdentity, len(keys))
	pending := make([]string, 0, len(keys))
	for _, key := range uniqueStrings(keys) {
		if cached, hit := s.cache.Lookup(ctx, table, key); hit {
			resolved[key] = cached
			continue
		}
		pending = append(pending, key)
	}
	if len(pending) == 0 {
		return resolved, nil
	}

	strategy := strategyFor(table)
	for _, column := range []models.PersonKeyColumn{strategy.primary, strategy.alternate} {
		if len(pending) == 0 {
			break
		}
		rows, err := s.people.ListByColumn(ctx, table, column, pending)
		if err != nil {
			s.logger.Warn("person lookup failed",
				zap.String("table", string(table)),
				zap.String("column", string(column)),
				zap.Strings("keys", pending),
				zap.Error(err))
			return resolved, fmt.Errorf("resolve %s by %s: %w", table, column, err)
		}
		byKey := make(map[string]models.PersonRow, len(rows))
		for _, row := range rows {
			byKey[columnValue(row, column)] = row
		}
		remaining := pending[:0:0]
		for _, key := range pending {
			row, ok := byKey[key]
			if !ok {
				remaining = append(remaining, key)
				continue
			}
			identity := NormalizePerson(table, row)
			resolved[key] = identity
			_ = s.cache.Remember(ctx, table, key, identity)
		}
		pending = remaining
	}

	if len(pending) > 0 {
		s.logger.Debug("person keys unresolved", zap.String("table", string(table)), zap.Strings("keys", pending))
	}
	return resolved, nil
}

// Lookup finds one person by either key convention.
func (s *IdentityService) Lookup(ctx context.Context, table models.PersonTable, key string) (*models.ResolvedPerson, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "person key is required")
	}
	strategy := strategyFor(table)
	for _, column := range []models.PersonKeyColumn{strategy.primary, strategy.alternate} {
		row, err := s.people.FindByKey(ctx, table, column, key)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, appErrors.WrapAs(err, appErrors.ErrUpstreamUnavailable)
		}
		aliases := []string{key, strings.TrimSpace(row.RowID)}
		if row.AccountID != nil {
			aliases = append(aliases, strings.TrimSpace(*row.AccountID))
		}
		return &models.ResolvedPerson{Identity: NormalizePerson(table, *row), Aliases: uniqueStrings(aliases)}, nil
	}
	return nil, appErrors.Clone(appErrors.ErrPersonNotFound, fmt.Sprintf("%s %s not found", strings.TrimSuffix(string(table), "s"), key))
}

// AliasKeys returns every key the person behind key is stored under, key
// first. Lookup failures degrade to just the key.
func (s *IdentityService) AliasKeys(ctx context.Context, table models.PersonTable, key string) []string {
	person, err := s.Lookup(ctx, table, key)
	if err != nil {
		if !errors.Is(err, appErrors.ErrPersonNotFound) {
			s.logger.Warn("alias lookup degraded", zap.String("table", string(table)), zap.String("key", key), zap.Error(err))
		}
		return []string{key}
	}
	return person.Aliases
}

type aliasResolver interface {
	AliasKeys(ctx context.Context, table models.PersonTable, key string) []string
}

// fetchWithAliasFallback runs fetch for key and, when the mapping rows come
// back empty, once more with the person's alias keys.
func fetchWithAliasFallback[T any](ctx context.Context, aliases aliasResolver, table models.PersonTable, key string, fetch func(context.Context, []string) ([]T, error)) ([]T, error) {
	items, err := fetch(ctx, []string{key})
	if err != nil {
		return nil, err
	}
	if len(items) > 0 || aliases == nil {
		return items, nil
	}
	keys := aliases.AliasKeys(ctx, table, key)
	if len(keys) <= 1 {
		return items, nil
	}
	return fetch(ctx, keys)
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		out = append(out, value)
	}
	return out
}

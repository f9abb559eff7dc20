package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// CatalogService builds the per-run name -> ID snapshots of the two
// platform catalogs.
type CatalogService interface {
	// Snapshot reads both catalogs once.
	Snapshot(ctx context.Context) (*CatalogMap, error)
}

// CatalogMap holds the two independent catalogs. Event lookups are
// case-insensitive; item lookups are exact.
type CatalogMap struct {
	events map[string]string // lowercased name -> event type id
	items  map[string]string // exact name -> item id
}

// ResolveEventTypeID maps a SKU name to an event type ID, ignoring case.
func (m *CatalogMap) ResolveEventTypeID(name string) (string, bool) {
	id, ok := m.events[strings.ToLower(name)]
	return id, ok
}

// ResolveItemID maps a SKU name to an integration item ID, case-sensitive.
func (m *CatalogMap) ResolveItemID(name string) (string, bool) {
	id, ok := m.items[name]
	return id, ok
}

type catalogService struct {
	ServiceParams
}

func NewCatalogService(params ServiceParams) CatalogService {
	return &catalogService{ServiceParams: params}
}

func (s *catalogService) Snapshot(ctx context.Context) (*CatalogMap, error) {
	eventTypes, err := s.CatalogRepo.ListEventTypes(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.CatalogRepo.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	m := &CatalogMap{
		events: make(map[string]string, len(eventTypes)),
		items:  make(map[string]string, len(items)),
	}
	for _, et := range eventTypes {
		if et.Name == "" || et.ID == "" {
			continue
		}
		m.events[strings.ToLower(et.Name)] = et.ID
	}
	for _, it := range items {
		if it.Name == "" || it.ID == "" {
			continue
		}
		m.items[it.Name] = it.ID
	}

	s.Logger.Infof("catalog snapshot built: %d event types, %d items", len(m.events), len(m.items))
	return m, nil
}

// unmatchedWarningCap bounds how many names an unmatched-SKU warning spells
// out; the remainder is reported as a count.
const unmatchedWarningCap = 10

// formatUnmatched renders an unmatched-name warning listing at most the
// first ten names plus a remainder count.
func formatUnmatched(subject string, names []string) string {
	if len(names) == 0 {
		return ""
	}
	shown := names
	var suffix string
	if len(names) > unmatchedWarningCap {
		shown = names[:unmatchedWarningCap]
		suffix = fmt.Sprintf(" (and %d more)", len(names)-unmatchedWarningCap)
	}
	return fmt.Sprintf("no matching %s for SKU name(s): %s%s", subject, strings.Join(shown, ", "), suffix)
}

// sortedStrings returns a sorted copy so warnings built from map keys stay
// deterministic.
func sortedStrings(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}

package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shashiranjanraj/ordersync/config"
	"github.com/shashiranjanraj/ordersync/pkg/logger"
	"github.com/shashiranjanraj/ordersync/pkg/metrics"
	"github.com/shashiranjanraj/ordersync/pkg/store"
)

// EffectsSeparator joins resolved special-effect names.
const EffectsSeparator = " | "

var digitsRe = regexp.MustCompile(`^[0-9]+$`)

// LookupTable is one id → name table.
type LookupTable struct {
	Table   string            `json:"table"`
	Entries map[string]string `json:"entries"`
}

// Name looks up a single id. A nil or empty id is not a gap.
func (t LookupTable) Name(id any) (name string, gap *ResolutionGap) {
	key := strings.TrimSpace(store.Text(id))
	if key == "" {
		return "", nil
	}
	if name, ok := t.Entries[key]; ok {
		return name, nil
	}
	return "", &ResolutionGap{Table: t.Table, ID: key}
}

// ResolutionGap is an identifier with no entry in its lookup table.
type ResolutionGap struct {
	Table string `json:"table"`
	ID    string `json:"id"`
}

func (g ResolutionGap) String() string { return g.Table + "#" + g.ID }

// Resolution is the outcome of resolving a delimited id/name list.
type Resolution struct {
	Names []string
	Gaps  []ResolutionGap
}

func (r Resolution) String() string { return strings.Join(r.Names, EffectsSeparator) }

// Resolve maps every pure-digit token of raw through t and keeps every
// other token as is. Unknown ids are kept verbatim and reported as gaps.
func Resolve(raw string, t LookupTable) Resolution {
	var res Resolution
	for _, tok := range splitTokens(raw) {
		if !digitsRe.MatchString(tok) {
			res.Names = append(res.Names, tok)
			continue
		}
		if name, ok := t.Entries[tok]; ok {
			res.Names = append(res.Names, name)
			continue
		}
		res.Names = append(res.Names, tok)
		res.Gaps = append(res.Gaps, ResolutionGap{Table: t.Table, ID: tok})
	}
	return res
}

// splitTokens splits on "|", or on "/" when the value has no pipe.
func splitTokens(raw string) []string {
	sep := "|"
	if !strings.Contains(raw, sep) {
		sep = "/"
	}

	var out []string
	for _, p := range strings.Split(raw, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Lookups holds every table one run needs. It is loaded once per run.
type Lookups struct {
	SpecialEffects LookupTable
	Sizes          LookupTable
	Customers      LookupTable
	PaperTypes     LookupTable
	GSM            LookupTable
}

// Cacher is the subset of pkg/cache the lookup service needs.
type Cacher interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// LookupService loads lookup tables from the store, through an optional cache.
type LookupService struct {
	store store.Store
	cache Cacher
	ttl   time.Duration
}

// NewLookupService builds the service. cache may be nil; ttl 0 disables caching.
func NewLookupService(st store.Store, cache Cacher, ttl time.Duration) *LookupService {
	return &LookupService{store: st, cache: cache, ttl: ttl}
}

// Load reads one lookup table. Any read failure is wrapped in
// ErrLookupUnavailable.
func (s *LookupService) Load(ctx context.Context, ts config.TableSchema) (LookupTable, error) {
	key := "lookup:" + ts.Name
	caching := s.cache != nil && s.ttl > 0

	if caching {
		var cached LookupTable
		if s.cache.Get(ctx, key, &cached) && cached.Entries != nil {
			metrics.CacheHits.WithLabelValues(ts.Name).Inc()
			return cached, nil
		}
		metrics.CacheMisses.WithLabelValues(ts.Name).Inc()
	}

	rows, err := s.store.Fetch(ctx, tableOf(ts))
	if err != nil {
		return LookupTable{}, fmt.Errorf("%w: %s: %w", ErrLookupUnavailable, ts.Name, err)
	}

	t := LookupTable{Table: ts.Name, Entries: make(map[string]string, len(rows))}
	nameCol := ts.Col("name")
	for _, r := range rows {
		id := store.Text(r[ts.Key])
		if id == "" {
			continue
		}
		t.Entries[id] = strings.TrimSpace(store.Text(r[nameCol]))
	}

	if caching {
		if err := s.cache.Set(ctx, key, t, s.ttl); err != nil {
			logger.WithCtx(ctx).Warn("lookup: cache write failed", "table", ts.Name, "error", err)
		}
	}
	return t, nil
}

// LoadAll reads every lookup table named by schema.
func (s *LookupService) LoadAll(ctx context.Context, schema config.SchemaConfig) (*Lookups, error) {
	l := &Lookups{}
	for _, item := range []struct {
		ts  config.TableSchema
		dst *LookupTable
	}{
		{schema.SpecialEffects, &l.SpecialEffects},
		{schema.Sizes, &l.Sizes},
		{schema.Customers, &l.Customers},
		{schema.PaperTypes, &l.PaperTypes},
		{schema.GSM, &l.GSM},
	} {
		t, err := s.Load(ctx, item.ts)
		if err != nil {
			return nil, err
		}
		*item.dst = t
	}
	return l, nil
}

func tableOf(ts config.TableSchema) store.Table {
	return store.Table{Name: ts.Name, Key: ts.Key}
}

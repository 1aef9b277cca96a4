package registry

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/taigon-vocab/examprep/internal/domain"
)

const (
	dictPrefix = "dict"
	wnPrefix   = "wn"
	regPrefix  = "reg"
)

// AddSense implements spec §4.4's add_sense: returns the existing sense_id
// on an exact (lemma, pos, source, definition) match, synthesizing and
// inserting a new row otherwise. senseOrder is optional; when provided on a
// match it updates the existing row's sense_order.
func (r *Registry) AddSense(ctx context.Context, lemma string, pos domain.PartOfSpeech, source domain.SenseSource, definition string, senseOrder *int) (string, error) {
	lemmaKey := domain.NormalizeText(lemma)

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.findExact(ctx, lemmaKey, pos, source, definition)
	if err != nil {
		return "", err
	}
	if existing != "" {
		if senseOrder != nil {
			if _, err := r.db.ExecContext(ctx,
				`UPDATE senses SET sense_order = ?, updated_at = ? WHERE sense_id = ?`,
				*senseOrder, time.Now(), existing); err != nil {
				return "", fmt.Errorf("update sense_order for %s: %w", existing, err)
			}
		}
		return existing, nil
	}

	senseID, err := r.synthesizeSenseID(ctx, lemmaKey, pos, source, definition)
	if err != nil {
		return "", err
	}

	order := 0
	if senseOrder != nil {
		order = *senseOrder
	}
	now := time.Now()
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO senses (sense_id, lemma, pos, source, definition, sense_order, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		senseID, lemmaKey, string(pos), string(source), definition, order, now, now); err != nil {
		return "", fmt.Errorf("%w: insert sense %s: %v", domain.ErrRegistryIntegrity, senseID, err)
	}

	return senseID, nil
}

func (r *Registry) findExact(ctx context.Context, lemmaKey string, pos domain.PartOfSpeech, source domain.SenseSource, definition string) (string, error) {
	var senseID string
	err := r.db.QueryRowContext(ctx,
		`SELECT sense_id FROM senses WHERE lemma = ? AND pos = ? AND source = ? AND definition = ?`,
		lemmaKey, string(pos), string(source), definition).Scan(&senseID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("lookup existing sense: %w", err)
	}
	return senseID, nil
}

// synthesizeSenseID derives a sense_id per spec §4.4: a content hash for
// dictionaryapi/wordnet, a monotonic registry index for llm_generated/manual.
func (r *Registry) synthesizeSenseID(ctx context.Context, lemmaKey string, pos domain.PartOfSpeech, source domain.SenseSource, definition string) (string, error) {
	abbr := pos.Abbr()

	switch source {
	case domain.SenseSourceDictionaryAPI:
		return fmt.Sprintf("%s.%s.%s%s", lemmaKey, abbr, dictPrefix, sha1Hex(definition)[:8]), nil
	case domain.SenseSourceWordNet:
		return fmt.Sprintf("%s.%s.%s%s", lemmaKey, abbr, wnPrefix, sha1Hex(definition)[:6]), nil
	default: // llm_generated, manual
		n, err := r.nextRegistryIndex(ctx, lemmaKey, pos, abbr)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s.%s.%s%d", lemmaKey, abbr, regPrefix, n), nil
	}
}

// nextRegistryIndex returns one more than the largest N already used for
// "{lemmaKey}.{abbr}.regN" among existing rows for this lemma+POS pair (0
// when there are none); gaps below that maximum are not reused.
func (r *Registry) nextRegistryIndex(ctx context.Context, lemmaKey string, pos domain.PartOfSpeech, abbr string) (int, error) {
	prefix := fmt.Sprintf("%s.%s.%s", lemmaKey, abbr, regPrefix)
	rows, err := r.db.QueryContext(ctx,
		`SELECT sense_id FROM senses WHERE lemma = ? AND pos = ? AND sense_id LIKE ? || '%'`,
		lemmaKey, string(pos), prefix)
	if err != nil {
		return 0, fmt.Errorf("scan registry indices: %w", err)
	}
	defer rows.Close()

	max := -1
	for rows.Next() {
		var senseID string
		if err := rows.Scan(&senseID); err != nil {
			return 0, fmt.Errorf("scan registry index row: %w", err)
		}
		suffix := strings.TrimPrefix(senseID, prefix)
		n, err := strconv.Atoi(suffix)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate registry indices: %w", err)
	}
	return max + 1, nil
}

// GetSenses returns every sense registered for lemma, ordered by sense_order
// then sense_id. Reads do not take the writer mutex (spec §4.4).
func (r *Registry) GetSenses(ctx context.Context, lemma string) ([]domain.RegistrySense, error) {
	lemmaKey := domain.NormalizeText(lemma)

	rows, err := r.db.QueryContext(ctx,
		`SELECT sense_id, lemma, pos, source, definition, sense_order, created_at, updated_at
		 FROM senses WHERE lemma = ? ORDER BY sense_order, sense_id`, lemmaKey)
	if err != nil {
		return nil, fmt.Errorf("get senses for %q: %w", lemma, err)
	}
	defer rows.Close()

	var out []domain.RegistrySense
	for rows.Next() {
		var s domain.RegistrySense
		var pos, source string
		if err := rows.Scan(&s.SenseID, &s.Lemma, &pos, &source, &s.Definition, &s.SenseOrder, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan sense row for %q: %w", lemma, err)
		}
		s.POS = domain.PartOfSpeech(pos)
		s.Source = domain.SenseSource(source)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate senses for %q: %w", lemma, err)
	}
	return out, nil
}

// GenerationCacheGet returns the cached Stage-6 payload for (lemma, cacheKey),
// or domain.ErrCacheMiss if no row exists.
func (r *Registry) GenerationCacheGet(ctx context.Context, lemma, cacheKey string) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM sense_generation_cache WHERE lemma = ? AND cache_key = ?`,
		domain.NormalizeText(lemma), cacheKey).Scan(&payload)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, domain.ErrCacheMiss
	case err != nil:
		return nil, fmt.Errorf("generation cache get %q: %w", lemma, err)
	}
	return payload, nil
}

// GenerationCachePut stores a Stage-6 payload, replacing any prior row for
// the same (lemma, cacheKey).
func (r *Registry) GenerationCachePut(ctx context.Context, lemma, cacheKey string, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO sense_generation_cache (lemma, cache_key, payload) VALUES (?, ?, ?)
		 ON CONFLICT (lemma, cache_key) DO UPDATE SET payload = excluded.payload`,
		domain.NormalizeText(lemma), cacheKey, payload); err != nil {
		return fmt.Errorf("generation cache put %q: %w", lemma, err)
	}
	return nil
}

// WSDCacheGet returns the cached Stage-7 decision for cacheKey, or
// domain.ErrCacheMiss if no row exists.
func (r *Registry) WSDCacheGet(ctx context.Context, cacheKey string) (domain.WSDCacheRecord, error) {
	var rec domain.WSDCacheRecord
	var source string
	err := r.db.QueryRowContext(ctx,
		`SELECT cache_key, sense_idx, source, model_version FROM wsd_cache WHERE cache_key = ?`,
		cacheKey).Scan(&rec.CacheKey, &rec.SenseIdx, &source, &rec.ModelVersion)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return domain.WSDCacheRecord{}, domain.ErrCacheMiss
	case err != nil:
		return domain.WSDCacheRecord{}, fmt.Errorf("wsd cache get %q: %w", cacheKey, err)
	}
	rec.Source = domain.WSDDecisionSource(source)
	return rec, nil
}

// WSDCachePut stores a Stage-7 decision, replacing any prior row for the
// same cache key.
func (r *Registry) WSDCachePut(ctx context.Context, rec domain.WSDCacheRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO wsd_cache (cache_key, sense_idx, source, model_version) VALUES (?, ?, ?, ?)
		 ON CONFLICT (cache_key) DO UPDATE SET sense_idx = excluded.sense_idx, source = excluded.source, model_version = excluded.model_version`,
		rec.CacheKey, rec.SenseIdx, string(rec.Source), rec.ModelVersion); err != nil {
		return fmt.Errorf("wsd cache put %q: %w", rec.CacheKey, err)
	}
	return nil
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Package store is the primary contract lookup against the managed
// datastore. It is the resolver's fast path: an exact multi-field probe,
// then a similarity-scored contains probe. Store failures are soft — the
// caller falls through to remote search.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"bidlens.app/resolver/internal/match"
	"bidlens.app/resolver/internal/model"
)

// ErrUnavailable signals a connectivity or credential failure on the
// primary store. Callers skip to remote tiers instead of failing hard.
var ErrUnavailable = errors.New("primary store unavailable")

// DynamoAPI is the slice of the DynamoDB client the store uses.
type DynamoAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// Config holds store settings.
type Config struct {
	Table string
	// CandidateLimit bounds the fuzzy contains-scan candidate set.
	CandidateLimit int32
	// Threshold is the minimum similarity a fuzzy hit must reach.
	// Zero means match.AcceptanceThreshold.
	Threshold float64
}

const (
	defaultCandidateLimit = 250
	healthCheckTimeout    = 5 * time.Second
)

// Exact probe order: canonical field names first, legacy snake_case after.
var exactProbeFields = []string{
	"noticeId", "notice_id",
	"solicitationNumber", "solicitation_number",
}

// Store looks contracts up in the primary datastore.
type Store struct {
	db        DynamoAPI
	table     string
	limit     int32
	threshold float64
}

// New creates a Store. The client is injected so tests can fake it.
func New(db DynamoAPI, cfg Config) *Store {
	limit := cfg.CandidateLimit
	if limit <= 0 {
		limit = defaultCandidateLimit
	}
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = match.AcceptanceThreshold
	}
	return &Store{db: db, table: cfg.Table, limit: limit, threshold: threshold}
}

// FindByIdentifier resolves a raw identifier against the store. The score
// is nil for exact hits and set for fuzzy ones; a (nil, nil, nil) return
// means a clean miss. Health is verified first so an unreachable store
// costs one failed call, not three.
func (s *Store) FindByIdentifier(ctx context.Context, raw string) (*model.ContractRecord, *float64, error) {
	if raw == "" {
		return nil, nil, nil
	}

	if err := s.healthy(ctx); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	rec, err := s.exactProbe(ctx, raw)
	if err != nil {
		return nil, nil, err
	}
	if rec != nil {
		return rec, nil, nil
	}

	rec, score, err := s.fuzzyProbe(ctx, raw, []string{"noticeId", "title", "description"})
	if err != nil {
		return nil, nil, err
	}
	if rec != nil {
		return rec, &score, nil
	}

	rec, score, err = s.fuzzyProbe(ctx, raw, []string{"solicitationNumber", "fullText"})
	if err != nil {
		return nil, nil, err
	}
	if rec != nil {
		return rec, &score, nil
	}

	return nil, nil, nil
}

func (s *Store) healthy(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	_, err := s.db.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	})
	return err
}

// exactProbe scans for byte equality against each candidate field in order
// and returns on the first hit, unscored.
func (s *Store) exactProbe(ctx context.Context, raw string) (*model.ContractRecord, error) {
	for _, field := range exactProbeFields {
		out, err := s.db.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(s.table),
			FilterExpression: aws.String("#f = :v"),
			ExpressionAttributeNames: map[string]string{
				"#f": field,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":v": &types.AttributeValueMemberS{Value: raw},
			},
			Limit: aws.Int32(s.limit),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: exact probe on %s: %v", ErrUnavailable, field, err)
		}
		if len(out.Items) > 0 {
			rec := toRecord(decodeItem(out.Items[0]))
			slog.DebugContext(ctx, "store exact hit", "field", field, "notice_id", rec.NoticeID)
			return &rec, nil
		}
	}
	return nil, nil
}

// fuzzyProbe fetches a bounded candidate set via contains filters on the
// given fields, scores every candidate's own identifier against the raw
// input, and keeps the best score at or above the threshold.
func (s *Store) fuzzyProbe(ctx context.Context, raw string, fields []string) (*model.ContractRecord, float64, error) {
	filter, names, values := containsFilter(fields, raw)

	out, err := s.db.Scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(s.table),
		FilterExpression:          aws.String(filter),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		Limit:                     aws.Int32(s.limit),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("%w: fuzzy probe: %v", ErrUnavailable, err)
	}

	var best *model.ContractRecord
	var bestScore float64
	for _, item := range out.Items {
		rec := toRecord(decodeItem(item))
		id := rec.NoticeID
		if id == "" {
			id = rec.SolicitationNumber
		}
		if score := match.Similarity(raw, id); score > bestScore {
			bestScore = score
			r := rec
			best = &r
		}
	}

	if best == nil || bestScore < s.threshold {
		return nil, 0, nil
	}
	slog.DebugContext(ctx, "store fuzzy hit", "score", bestScore, "notice_id", best.NoticeID)
	return best, bestScore, nil
}

// AwardAmounts collects award amounts for records under a NAICS code,
// probing both the canonical and legacy attribute names. Used by the
// historical pricing statistics.
func (s *Store) AwardAmounts(ctx context.Context, naics string) ([]float64, error) {
	out, err := s.db.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(s.table),
		FilterExpression: aws.String("#a = :naics OR #b = :naics"),
		ExpressionAttributeNames: map[string]string{
			"#a": "naicsCode",
			"#b": "naics_code",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":naics": &types.AttributeValueMemberS{Value: naics},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: award scan: %v", ErrUnavailable, err)
	}

	var amounts []float64
	for _, item := range out.Items {
		rec := toRecord(decodeItem(item))
		if rec.AwardAmount != nil {
			amounts = append(amounts, *rec.AwardAmount)
		}
	}
	return amounts, nil
}

func containsFilter(fields []string, raw string) (string, map[string]string, map[string]types.AttributeValue) {
	clauses := make([]string, len(fields))
	names := make(map[string]string, len(fields))
	for i, field := range fields {
		placeholder := fmt.Sprintf("#f%d", i)
		names[placeholder] = field
		clauses[i] = fmt.Sprintf("contains(%s, :v)", placeholder)
	}
	values := map[string]types.AttributeValue{
		":v": &types.AttributeValueMemberS{Value: raw},
	}
	return strings.Join(clauses, " OR "), names, values
}

package report

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Sumatoshi-tech/sonarexport/pkg/sonar"
)

// UnknownFile names a duplication reference whose file id is missing from
// the response's file table.
const UnknownFile = "unknown"

// DuplicationSource looks up the duplication groups of one file.
type DuplicationSource interface {
	ShowDuplications(ctx context.Context, fileKey string) (*sonar.DuplicationsResponse, error)
}

// Resolver turns duplication candidates into entries with block ranges.
type Resolver struct {
	source DuplicationSource
	logger *slog.Logger
}

// NewResolver creates a Resolver. A nil logger discards output.
func NewResolver(source DuplicationSource, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Resolver{source: source, logger: logger}
}

// Resolve looks up each candidate in turn. Candidates whose response carries
// no duplication groups are dropped. The result is ordered by descending
// density, ties keeping candidate order. Any lookup error aborts.
func (r *Resolver) Resolve(ctx context.Context, candidates []DuplicationCandidate) ([]DuplicationEntry, error) {
	var entries []DuplicationEntry

	for _, candidate := range candidates {
		resp, err := r.source.ShowDuplications(ctx, candidate.Key)
		if err != nil {
			return nil, fmt.Errorf("duplications of %s: %w", candidate.Key, err)
		}

		if resp == nil || len(resp.Duplications) == 0 {
			r.logger.DebugContext(ctx, "no duplication groups", slog.String("file", candidate.Key))

			continue
		}

		entries = append(entries, DuplicationEntry{
			File:    candidate.File,
			Density: candidate.Density,
			Blocks:  r.blocks(ctx, candidate.Key, resp),
		})
	}

	return SortByDensity(entries), nil
}

// blocks converts duplication groups: the first block of a group is the
// range in the requested file, the others are its references.
func (r *Resolver) blocks(ctx context.Context, fileKey string, resp *sonar.DuplicationsResponse) []DuplicationBlock {
	blocks := make([]DuplicationBlock, 0, len(resp.Duplications))

	for _, group := range resp.Duplications {
		if len(group.Blocks) == 0 {
			continue
		}

		source := group.Blocks[0]
		refs := make([]BlockReference, 0, len(group.Blocks)-1)

		for _, ref := range group.Blocks[1:] {
			refs = append(refs, BlockReference{
				File: r.refFile(ctx, fileKey, resp.Files, ref.Ref),
				From: ref.From,
				Size: ref.Size,
			})
		}

		blocks = append(blocks, DuplicationBlock{
			From:       source.From,
			Size:       source.Size,
			References: refs,
		})
	}

	return blocks
}

func (r *Resolver) refFile(ctx context.Context, fileKey string, files map[string]sonar.DuplicationFile, ref sonar.RefID) string {
	file, ok := files[string(ref)]
	if !ok || file.Name == "" {
		r.logger.DebugContext(ctx, "unresolved duplication reference",
			slog.String("file", fileKey),
			slog.String("ref", string(ref)),
		)

		return UnknownFile
	}

	return file.Name
}

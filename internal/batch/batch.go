// Package batch analyzes directories of closing-price files through the
// same dispatcher the TCP listener uses, so every file produces exactly one
// persisted record.
package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/profitpulse/internal/dispatch"
	"github.com/guttosm/profitpulse/internal/domain/dto"
	"github.com/guttosm/profitpulse/internal/domain/models"
	"github.com/guttosm/profitpulse/internal/logger"
)

const maxParallelCap = 8

// ErrNoFiles is returned when the directory holds no price files.
var ErrNoFiles = errors.New("no price files found")

// FileResult is the outcome of one analyzed file.
type FileResult struct {
	File     string
	Prices   int
	Envelope dto.Envelope
}

// ProcessDirectory analyzes every *.txt and *.csv file in dir with action
// (one of the analyze.* actions).
//
// Behavior:
//   - Files are processed concurrently, at most parallel at a time
//     (0 means min(NumCPU, 8)).
//   - Each file becomes one CLOSING_PRICES request.
//   - The first parse error or ERROR envelope cancels the remaining files and
//     is returned.
//
// Results are returned in file-name order.
func ProcessDirectory(ctx context.Context, dir string, h dispatch.Handler, action string, parallel int) ([]FileResult, error) {
	if !strings.HasPrefix(action, "analyze.") {
		return nil, fmt.Errorf("action %q is not an analysis", action)
	}

	files, err := listPriceFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFiles, dir)
	}

	maxParallel := maxParallelCap
	if parallel > 0 {
		if parallel > maxParallelCap {
			parallel = maxParallelCap
		}
		maxParallel = parallel
	} else if c := runtime.NumCPU(); c < maxParallel {
		maxParallel = c
	}

	log := logger.With("batch")
	log.Info().Int("files", len(files)).Str("dir", dir).Int("max_parallel", maxParallel).Str("action", action).Msg("batch start")

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, maxParallel)

loop:
	for i, file := range files {
		select {
		case sem <- struct{}{}:
		case <-gctx.Done():
			break loop
		}

		g.Go(func() error {
			defer func() { <-sem }()
			start := time.Now()
			base := filepath.Base(file)

			prices, err := parsePriceFile(gctx, file)
			if err != nil {
				log.Error().Str("file", base).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", file, err)
			}

			body, err := json.Marshal(dto.AnalyzeBody{Values: prices, DataMode: string(models.ClosingPrices)})
			if err != nil {
				return fmt.Errorf("file %s: encode body: %w", file, err)
			}

			env := h.Dispatch(gctx, action, body)
			if !env.OK() {
				log.Error().Str("file", base).Str("message", env.Message).Msg("analysis rejected")
				return fmt.Errorf("file %s: %s", file, env.Message)
			}

			results[i] = FileResult{File: base, Prices: len(prices), Envelope: env}
			log.Info().Int("idx", i+1).Int("total", len(files)).Str("file", base).Int("prices", len(prices)).Dur("elapsed", time.Since(start)).Msg("file done")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func listPriceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".txt", ".csv":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

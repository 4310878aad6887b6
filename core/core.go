// Package core has core logic for workspace metrics aggregation, trends and caching.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/workpulse/workpulse/internal/contract"
	"github.com/workpulse/workpulse/internal/outwriter"
)

// serviceFromManager builds an AggregationService from the configured stores.
func serviceFromManager(cfg *contract.Config, mgr contract.StoreManager) *AggregationService {
	svc := NewAggregationService(mgr.GetSourceStore(), mgr.GetCacheStore(), mgr.GetHistoryStore())
	svc.SetBatchSize(cfg.BatchSize)
	return svc
}

// ExecuteWorkspaceMetrics runs the aggregation pipeline and prints results
// to stdout. It serves as the main entry point for the 'metrics' command.
func ExecuteWorkspaceMetrics(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	svc := serviceFromManager(cfg, mgr)

	metrics, err := svc.AggregateWorkspaceMetrics(ctx, cfg.WorkspaceID, Options{
		TimeRange:              cfg.TimeRange,
		ForceRefresh:           cfg.ForceRefresh,
		IncludeRepositoryStats: cfg.IncludeRepoStats,
	})
	if err != nil {
		return err
	}

	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteMetrics(metrics, cfg, duration)
}

// ExecuteForceRefresh recomputes one (workspace, range) snapshot and prints
// the fresh result. It serves as the entry point for the 'refresh' command.
func ExecuteForceRefresh(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()
	svc := serviceFromManager(cfg, mgr)

	metrics, err := svc.ForceRefresh(ctx, cfg.WorkspaceID, cfg.TimeRange)
	if err != nil {
		return err
	}

	duration := time.Since(start)
	return outwriter.NewOutWriter().WriteMetrics(metrics, cfg, duration)
}

// ExecuteInvalidateCache marks every cached snapshot for the workspace as
// stale. It serves as the entry point for 'cache invalidate'.
func ExecuteInvalidateCache(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	svc := serviceFromManager(cfg, mgr)
	if err := svc.InvalidateCache(ctx, cfg.WorkspaceID); err != nil {
		return err
	}
	fmt.Printf("Cache invalidated for workspace %s.\n", cfg.WorkspaceID)
	return nil
}

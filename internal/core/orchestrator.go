package core

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"castdl/pkg/fsname"
)

// Orchestrator drives the per-item download loop: ledger check, external
// downloader invocation with a fallback attempt sequence, ledger update.
type Orchestrator struct {
	config     *Config
	downloader Downloader
	ledger     Ledger
	logger     *zap.Logger

	// attempts is the invocation sequence tried per item, in order. The
	// first entry is the primary attempt; the rest are fallbacks.
	attempts []AuthMode
}

func NewOrchestrator(
	config *Config,
	downloader Downloader,
	ledger Ledger,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		config:     config,
		downloader: downloader,
		ledger:     ledger,
		logger:     logger,
		attempts:   []AuthMode{AuthNone, AuthBrowserCookies},
	}
}

// Process downloads items in sequence. Item-level failures are counted
// and the batch continues; only ledger write failures and context
// cancellation abort the run. The returned summary is valid even when an
// error is returned.
func (o *Orchestrator) Process(ctx context.Context, items []Item) (*Summary, error) {
	summary := &Summary{}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			o.logger.Warn("Run cancelled, stopping batch",
				zap.Int("processed", i),
				zap.Int("remaining", len(items)-i))
			return summary, err
		}

		o.logger.Info("Processing item",
			zap.Int("index", i+1),
			zap.Int("total", len(items)),
			zap.String("id", item.ID),
			zap.String("title", item.Title),
			zap.String("kind", item.Kind.String()))

		if o.ledger.Contains(item.ID) {
			o.logger.Info("Item already downloaded, skipping",
				zap.String("id", item.ID),
				zap.String("state", StateSkipped.String()))
			summary.Skipped++
			continue
		}

		state, viaFallback := o.downloadItem(ctx, item)
		switch state {
		case StateSucceeded:
			if err := o.ledger.Record(item.ID); err != nil {
				return summary, err
			}
			summary.Succeeded++
			if viaFallback {
				summary.FallbackSucceeded++
			}
		case StateFailed:
			summary.Failed++
		default:
			// downloadItem only returns terminal states.
			o.logger.Error("Unexpected item state", zap.String("state", state.String()))
			summary.Failed++
		}
	}

	o.logger.Info("Batch finished",
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("viaFallback", summary.FallbackSucceeded),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", summary.Failed))

	return summary, nil
}

// downloadItem runs the attempt sequence for one item and returns its
// terminal state plus whether a fallback attempt produced the success.
func (o *Orchestrator) downloadItem(ctx context.Context, item Item) (ItemState, bool) {
	name := fsname.Build(item.UploadDate, item.Title, item.ID, o.config.Output.Format.Extension())
	target := filepath.Join(o.config.Output.Dir, name)

	for attempt, auth := range o.attempts {
		state := StateDownloading
		if attempt > 0 {
			state = StateFallbackDownloading
		}

		o.logger.Info("Invoking downloader",
			zap.String("id", item.ID),
			zap.String("url", item.SourceURL),
			zap.String("target", target),
			zap.String("auth", auth.String()),
			zap.String("state", state.String()))

		err := o.downloader.Download(ctx, DownloadRequest{
			URL:        item.SourceURL,
			TargetPath: target,
			Format:     o.config.Output.Format,
			Auth:       auth,
		})
		if err == nil {
			if attempt > 0 {
				o.logger.Info("Download succeeded via fallback",
					zap.String("id", item.ID),
					zap.String("auth", auth.String()))
			}
			return StateSucceeded, attempt > 0
		}

		o.logger.Warn("Download attempt failed",
			zap.String("id", item.ID),
			zap.String("auth", auth.String()),
			zap.Error(err))
	}

	o.logger.Error("All download attempts failed, item left for next run",
		zap.String("id", item.ID),
		zap.String("url", item.SourceURL))
	return StateFailed, false
}

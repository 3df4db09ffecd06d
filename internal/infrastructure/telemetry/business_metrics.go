package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// DraftCounter reports how many quotation drafts are open
type DraftCounter interface {
	OpenDrafts() int
}

// BusinessMetrics records quotation activity
type BusinessMetrics struct {
	logger *zap.Logger

	quotationsSaved *Counter
	quotationAmount *Histogram
	statusChanges   *Counter
	exports         *Counter
	openDrafts      *Gauge

	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once
}

// NewBusinessMetrics creates the quotation instruments on meter
func NewBusinessMetrics(meter metric.Meter, logger *zap.Logger) (*BusinessMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	bm := &BusinessMetrics{logger: logger, stopChan: make(chan struct{})}

	var err error
	if bm.quotationsSaved, err = NewCounter(meter, "quotation_saved_total",
		"Quotations created or updated from drafts", "{quotations}"); err != nil {
		return nil, err
	}
	if bm.quotationAmount, err = NewHistogram(meter, "quotation_total_amount",
		"Grand total of saved quotations", "{IDR}", AmountBuckets...); err != nil {
		return nil, err
	}
	if bm.statusChanges, err = NewCounter(meter, "quotation_status_change_total",
		"Quotation status transitions", "{transitions}"); err != nil {
		return nil, err
	}
	if bm.exports, err = NewCounter(meter, "quotation_export_total",
		"Quotation documents exported", "{documents}"); err != nil {
		return nil, err
	}
	if bm.openDrafts, err = NewGauge(meter, "quotation_open_drafts",
		"Drafts currently being edited", "{drafts}"); err != nil {
		return nil, err
	}
	return bm, nil
}

// RecordQuotationSaved records a successful submit
func (bm *BusinessMetrics) RecordQuotationSaved(ctx context.Context, created bool, status string, total decimal.Decimal) {
	op := "update"
	if created {
		op = "create"
	}
	attrs := []attribute.KeyValue{AttrOperation.String(op), AttrStatus.String(status)}
	bm.quotationsSaved.Inc(ctx, attrs...)
	amount, _ := total.Float64()
	bm.quotationAmount.Record(ctx, amount, attrs...)
}

// RecordStatusChange records a status transition
func (bm *BusinessMetrics) RecordStatusChange(ctx context.Context, from, to string) {
	bm.statusChanges.Inc(ctx, AttrFromStatus.String(from), AttrToStatus.String(to))
}

// RecordExport records an exported document
func (bm *BusinessMetrics) RecordExport(ctx context.Context, format string) {
	bm.exports.Inc(ctx, AttrExportType.String(format))
}

// StartPeriodicCollection samples the open draft count every interval until
// Stop is called or ctx is done
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, drafts DraftCounter, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = time.Minute
		}
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			bm.openDrafts.Record(ctx, int64(drafts.OpenDrafts()))
			for {
				select {
				case <-bm.stopChan:
					return
				case <-ctx.Done():
					return
				case <-ticker.C:
					bm.openDrafts.Record(ctx, int64(drafts.OpenDrafts()))
				}
			}
		}()
	})
}

// Stop ends periodic collection
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
		bm.logger.Debug("Business metrics collection stopped")
	})
}

// Package metrics は契約の状態遷移と同期処理の Prometheus メトリクスを提供します。
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ogurasousui/hrlink/internal/core/contract"
	"github.com/ogurasousui/hrlink/internal/core/synclog"
	"github.com/ogurasousui/hrlink/internal/core/syncer"
)

const namespace = "hrlink"

// Collector は contract.Observer と syncer.Observer を実装します。
type Collector struct {
	transitions  *prometheus.CounterVec
	syncRuns     *prometheus.CounterVec
	syncedFields *prometheus.CounterVec
	relationRows *prometheus.CounterVec
	copiedFiles  *prometheus.CounterVec
	skippedFiles *prometheus.CounterVec
	syncDuration *prometheus.HistogramVec
}

var (
	_ contract.Observer = (*Collector)(nil)
	_ syncer.Observer   = (*Collector)(nil)
)

// New は reg にメトリクスを登録した Collector を返します。
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		transitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contract_transitions_total",
			Help:      "Committed contract state transitions.",
		}, []string{"from", "to"}),
		syncRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Sync invocations by direction, type and outcome.",
		}, []string{"direction", "sync_type", "outcome"}),
		syncedFields: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_fields_total",
			Help:      "Scalar fields whose value changed during a sync.",
		}, []string{"direction"}),
		relationRows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_relation_rows_total",
			Help:      "Relation rows written by syncs.",
		}, []string{"kind"}),
		copiedFiles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_attachments_copied_total",
			Help:      "Attachment files copied by syncs.",
		}, []string{"direction"}),
		skippedFiles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_attachments_skipped_total",
			Help:      "Attachment files skipped because the copy failed.",
		}, []string{"direction"}),
		syncDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Sync invocation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"direction", "sync_type"}),
	}
}

// ObserveTransition はコミットされた状態遷移を数えます。
func (c *Collector) ObserveTransition(from, to contract.Status) {
	c.transitions.WithLabelValues(string(from), string(to)).Inc()
}

// ObserveSync は同期 1 回分の結果を記録します。失敗時は r が nil です。
func (c *Collector) ObserveSync(direction synclog.Direction, syncType synclog.SyncType, outcome string, r *syncer.Result, elapsed time.Duration) {
	dir := string(direction)
	c.syncRuns.WithLabelValues(dir, string(syncType), outcome).Inc()
	c.syncDuration.WithLabelValues(dir, string(syncType)).Observe(elapsed.Seconds())
	if r == nil {
		return
	}

	c.syncedFields.WithLabelValues(dir).Add(float64(len(r.SyncedFields)))
	for kind, n := range r.Relations {
		c.relationRows.WithLabelValues(string(kind)).Add(float64(n))
	}
	c.copiedFiles.WithLabelValues(dir).Add(float64(r.CopiedAttachments))
	c.skippedFiles.WithLabelValues(dir).Add(float64(len(r.Skipped)))
}

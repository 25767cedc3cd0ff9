package runner

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/torosent/variantbench/internal/metrics"
)

type diagnosticExecutor struct {
	inner    Executor
	endpoint string
	log      logrus.FieldLogger
}

// WithDiagnostics logs one warning per unsuccessful attempt. Output goes to the
// logger, never to the report stream.
func WithDiagnostics(exec Executor, endpoint string, log logrus.FieldLogger) Executor {
	if log == nil {
		return exec
	}
	return &diagnosticExecutor{inner: exec, endpoint: endpoint, log: log}
}

func (d *diagnosticExecutor) Execute(ctx context.Context) metrics.Outcome {
	o := d.inner.Execute(ctx)
	if o.Success {
		return o
	}

	entry := d.log.WithFields(logrus.Fields{
		"endpoint":   d.endpoint,
		"latency_ms": o.LatencyMs,
	})
	if o.HasResponse() {
		entry.WithField("status", o.StatusCode).Warn(o.ErrorMessage)
		return o
	}
	entry.WithField("kind", string(o.ErrorKind)).Warnf("%s: %s", o.ErrorKind.FriendlyName(), o.ErrorMessage)
	return o
}

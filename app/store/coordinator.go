package store

import (
	"errors"

	"go.uber.org/zap"

	"StockDesk/app/metrics"
	"StockDesk/app/remote"
)

// confirmThenApply is the mutation discipline used everywhere in the store:
// send the mutation to the remote, and only on a confirmed result touch local
// state. On failure local state is left exactly as it was and the typed
// remote error is surfaced to the caller.
func confirmThenApply[T any](log *zap.Logger, table, op string, call func() (T, error), apply func(T)) (T, error) {
	metrics.RemoteCalls.WithLabelValues(table, op).Inc()
	out, err := call()
	if err != nil {
		metrics.RemoteFailures.WithLabelValues(table, op, errorKind(err)).Inc()
		log.Warn("remote mutation rejected, local state unchanged",
			zap.String("table", table), zap.String("op", op), zap.Error(err))
		var zero T
		return zero, err
	}
	apply(out)
	metrics.MutationsApplied.WithLabelValues(table, op).Inc()
	log.Debug("mutation confirmed and applied",
		zap.String("table", table), zap.String("op", op))
	return out, nil
}

// confirmDelete is confirmThenApply for operations with no confirmed payload.
// A remote NotFound counts as confirmed: the row is gone either way.
func confirmDelete(log *zap.Logger, table string, call func() error, apply func()) error {
	metrics.RemoteCalls.WithLabelValues(table, "delete").Inc()
	if err := call(); err != nil && !remote.IsNotFound(err) {
		metrics.RemoteFailures.WithLabelValues(table, "delete", errorKind(err)).Inc()
		log.Warn("remote delete rejected, local state unchanged",
			zap.String("table", table), zap.Error(err))
		return err
	}
	apply()
	metrics.MutationsApplied.WithLabelValues(table, "delete").Inc()
	return nil
}

func errorKind(err error) string {
	var re *remote.Error
	if errors.As(err, &re) {
		return string(re.Kind)
	}
	return "unknown"
}

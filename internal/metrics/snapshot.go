package metrics

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// WriteSnapshot encodes the gatherer's current metric families in
// Prometheus text exposition format. Families not matching the prefix
// are skipped (empty prefix = everything, including Go runtime metrics).
func WriteSnapshot(w io.Writer, gatherer prometheus.Gatherer, prefix string) error {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	mfs, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range mfs {
		if !keepFamily(mf, prefix) {
			continue
		}
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}

	return nil
}

func keepFamily(mf *dto.MetricFamily, prefix string) bool {
	if prefix == "" {
		return true
	}
	return strings.HasPrefix(mf.GetName(), prefix)
}

// SnapshotToFile writes a runloop metrics snapshot next to the run
// logs, named metrics_<timestamp>.prom. Returns the file path.
func SnapshotToFile(dir, timestamp string, gatherer prometheus.Gatherer) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("metrics_%s.prom", timestamp))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create snapshot file: %w", err)
	}
	defer f.Close()

	if err := WriteSnapshot(f, gatherer, "runloop_"); err != nil {
		return "", err
	}

	return path, nil
}

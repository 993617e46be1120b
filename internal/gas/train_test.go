package gas

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrainReducesLoss(t *testing.T) {
	m := NewModel(testConfig())

	res, err := NewTrainer(testConfig()).Train(m, Generate())
	require.NoError(t, err)

	assert.Equal(t, Epochs, res.Epochs)
	assert.False(t, math.IsNaN(res.FinalLoss))
	assert.Less(t, res.FinalLoss, res.InitialLoss)
	assert.InDelta(t, res.FinalLoss, m.Loss(Generate()), 1e-9)

	_, err = uuid.Parse(res.RunID)
	assert.NoError(t, err)
}

func TestTrainLogsEveryHundredEpochs(t *testing.T) {
	var buf bytes.Buffer
	cfg := testConfig()
	cfg.Logger = zerolog.New(&buf)

	res, err := NewTrainer(cfg).Train(NewModel(cfg), Generate())
	require.NoError(t, err)

	var epochs []int
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry struct {
			Run   string   `json:"run"`
			Epoch *int     `json:"epoch"`
			Loss  *float64 `json:"loss"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, res.RunID, entry.Run)
		if entry.Epoch != nil {
			require.NotNil(t, entry.Loss)
			epochs = append(epochs, *entry.Epoch)
		}
	}
	assert.Equal(t, []int{0, 100, 200, 300, 400}, epochs)
}

func TestTrainIsDeterministic(t *testing.T) {
	a, b := NewModel(testConfig()), NewModel(testConfig())

	ra, err := NewTrainer(testConfig()).Train(a, Generate())
	require.NoError(t, err)
	rb, err := NewTrainer(testConfig()).Train(b, Generate())
	require.NoError(t, err)

	assert.Equal(t, a.Params(), b.Params())
	assert.Equal(t, ra.FinalLoss, rb.FinalLoss)
	assert.NotEqual(t, ra.RunID, rb.RunID)
}

// metricValue reads a single-series counter or gauge from reg.
func metricValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		require.Len(t, mf.GetMetric(), 1)
		m := mf.GetMetric()[0]
		if m.GetCounter() != nil {
			return m.GetCounter().GetValue()
		}
		return m.GetGauge().GetValue()
	}
	t.Fatalf("metric %s not registered", name)
	return 0
}

func TestTrainPublishesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	cfg := testConfig()
	cfg.Registerer = reg

	_, err := NewTrainer(cfg).Train(NewModel(cfg), Generate())
	require.NoError(t, err)

	assert.Equal(t, float64(Epochs), metricValue(t, reg, "gasprice_training_epochs_total"))
	loss := metricValue(t, reg, "gasprice_training_loss")
	assert.Greater(t, loss, 0.0)

	// A second run on the same registry keeps counting.
	_, err = NewTrainer(cfg).Train(NewModel(cfg), Generate())
	require.NoError(t, err)
	assert.Equal(t, float64(2*Epochs), metricValue(t, reg, "gasprice_training_epochs_total"))
}

func TestTrainEmptyDataset(t *testing.T) {
	m := NewModel(testConfig())
	before := m.Params()

	res, err := NewTrainer(testConfig()).Train(m, nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.InitialLoss)
	assert.Equal(t, 0.0, res.FinalLoss)
	assert.Equal(t, before, m.Params())
}

package metrics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"netgame/config"
	"netgame/game"

	"github.com/google/uuid"
)

type ConfigRecord struct {
	ID int
	config.Game
}

type RunRecord struct {
	ID     int
	Config int // ConfigRecord.ID
	Seed   uint64
	RunMetric
}

type RoundRecord struct {
	Run int // RunRecord.ID
	game.Round
}

type Setup struct {
	Name      string        `json:"name"`
	RunID     string        `json:"runId"`
	Configs   []config.Game `json:"configs"`
	Seeds     []uint64      `json:"seeds"`
	Edges     int           `json:"edges"`
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Duration  time.Duration `json:"duration"`
}

type Writer struct {
	baseDir string
	runID   string
}

// NewWriter creates a fresh output folder <root>/<name>/<timestamp>-<id>.
func NewWriter(root, name string) (*Writer, error) {
	runID := uuid.New().String()
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp+"-"+runID[:8])
	err := os.MkdirAll(baseDir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
		runID:   runID,
	}, nil
}

func (w *Writer) Dir() string {
	return w.baseDir
}

func (w *Writer) RunID() string {
	return w.runID
}

func (w *Writer) WriteSetup(setup Setup) error {
	setup.RunID = w.runID
	path := filepath.Join(w.baseDir, "setup.json")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create setup file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(setup); err != nil {
		return fmt.Errorf("failed to write setup: %w", err)
	}
	return nil
}

func (w *Writer) WriteConfigs(configs []ConfigRecord) error {
	header := []string{"id", "defense_budget", "rounds", "num_paths", "randomness_factor"}
	rows := make([][]string, len(configs))
	for i, c := range configs {
		rows[i] = []string{
			strconv.Itoa(c.ID),
			formatFloat(c.DefenseBudget),
			strconv.Itoa(c.Rounds),
			strconv.Itoa(c.NumPaths),
			formatFloat(c.RandomnessFactor),
		}
	}
	return w.writeCSV("configs.csv", header, rows)
}

func (w *Writer) WriteRuns(runs []RunRecord) error {
	header := []string{"id", "config", "seed", "rounds", "strikes", "successful_strikes", "total_profit", "total_loss", "duration"}
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			strconv.Itoa(r.ID),
			strconv.Itoa(r.Config),
			strconv.FormatUint(r.Seed, 10),
			strconv.Itoa(r.Rounds),
			strconv.Itoa(r.Strikes),
			strconv.Itoa(r.SuccessfulStrikes),
			formatFloat(r.TotalProfit),
			formatFloat(r.TotalLoss),
			r.Duration.String(),
		}
	}
	return w.writeCSV("runs.csv", header, rows)
}

func (w *Writer) WriteRounds(rounds []RoundRecord) error {
	header := []string{"run", "round", "allocation", "targets", "attacker_profit", "defender_loss"}
	rows := make([][]string, len(rounds))
	for i, r := range rounds {
		rows[i] = []string{
			strconv.Itoa(r.Run),
			strconv.Itoa(r.Number),
			r.Allocation.String(),
			game.JoinKeys(r.Targets),
			formatFloat(r.AttackerProfit),
			formatFloat(r.DefenderLoss),
		}
	}
	return w.writeCSV("rounds.csv", header, rows)
}

func (w *Writer) writeCSV(name string, header []string, rows [][]string) error {
	path := filepath.Join(w.baseDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", name, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write %s header: %w", name, err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write %s rows: %w", name, err)
	}
	return nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
